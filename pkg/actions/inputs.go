package actions

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/matzehuels/setup-pdm/pkg/errors"
)

// Inputs reads action inputs. Values come from, in order of precedence:
// a changed command-line flag of the same name, the INPUT_<NAME> variable
// set by the runner, and the registered default.
type Inputs struct {
	v *viper.Viper
}

// NewInputs creates an Inputs with the given defaults. Every default key is
// bound to its INPUT_<NAME> variable.
func NewInputs(defaults map[string]any) *Inputs {
	v := viper.New()
	for name, value := range defaults {
		v.SetDefault(name, value)
		_ = v.BindEnv(name, InputEnvName(name))
	}
	return &Inputs{v: v}
}

// InputEnvName returns the environment variable the runner uses for an
// input: spaces become underscores and the name is upper-cased.
func InputEnvName(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// BindFlags lets flags in fs override the input of the same name.
func (in *Inputs) BindFlags(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		if bindErr := in.v.BindEnv(f.Name, InputEnvName(f.Name)); bindErr != nil {
			err = bindErr
			return
		}
		err = in.v.BindPFlag(f.Name, f)
	})
	return err
}

// String returns the trimmed value of an input, or "" if unset.
func (in *Inputs) String(name string) string {
	return strings.TrimSpace(in.v.GetString(name))
}

// Bool returns a boolean input. Only the YAML 1.2 core schema spellings
// are accepted.
func (in *Inputs) Bool(name string) (bool, error) {
	switch val := in.String(name); val {
	case "true", "True", "TRUE":
		return true, nil
	case "false", "False", "FALSE":
		return false, nil
	default:
		return false, errors.New(errors.ErrCodeInvalidInput,
			"input does not meet YAML 1.2 \"Core Schema\" specification: %s; support boolean input list: `true | True | TRUE | false | False | FALSE`", name)
	}
}

// List returns a multi-value input split on newlines and commas, with
// blank entries dropped.
func (in *Inputs) List(name string) []string {
	var out []string
	for _, line := range strings.FieldsFunc(in.v.GetString(name), func(r rune) bool { return r == '\n' || r == ',' }) {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
