package errdefs

import (
	"errors"
	"strings"
	"testing"
)

func TestUpstreamKeepsExistingClassification(t *testing.T) {
	t.Parallel()

	cfgErr := NotConfigured("GITHUB_TOKEN is not set")
	err := Upstream("search code", cfgErr)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if errors.Is(err, ErrUpstream) {
		t.Fatalf("classified error must not be re-labelled upstream: %v", err)
	}

	raw := errors.New("connection reset")
	err = Upstream("search code", raw)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, raw) {
		t.Fatalf("expected ErrUpstream wrapping cause, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "search code: ") {
		t.Fatalf("error should name the operation, got %q", err.Error())
	}
	if Upstream("noop", nil) != nil {
		t.Fatalf("Upstream(nil) should be nil")
	}
}

func TestKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{InvalidInput("bad url %q", "x"), "invalid_input"},
		{NotConfigured("no token"), "not_configured"},
		{NotFound("no examples"), "not_found"},
		{Upstream("create board", errors.New("500")), "upstream"},
		{errors.New("boom"), "internal"},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v)=%q, want %q", tc.err, got, tc.want)
		}
	}
}
