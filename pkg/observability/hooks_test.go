package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	s := NoopStageHooks{}
	s.OnStageStart(ctx, "invoking")
	s.OnStageComplete(ctx, "invoking", time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "deps")
	c.OnCacheMiss(ctx, "deps")
	c.OnCacheSet(ctx, "deps", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "pdm-project.org", "/install-pdm.py")
	h.OnResponse(ctx, "GET", "pdm-project.org", "/install-pdm.py", 200, time.Second)
	h.OnError(ctx, "GET", "pdm-project.org", "/install-pdm.py", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Stage().(NoopStageHooks); !ok {
		t.Error("Stage() should return NoopStageHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customStage := &testStageHooks{}
	SetStageHooks(customStage)
	if Stage() != customStage {
		t.Error("SetStageHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Stage().(NoopStageHooks); !ok {
		t.Error("Reset() should restore NoopStageHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStageHooks{}
	SetStageHooks(custom)

	SetStageHooks(nil)

	if Stage() != custom {
		t.Error("SetStageHooks(nil) should be ignored")
	}

	Reset()
}

type testStageHooks struct{ NoopStageHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
