package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	var syntaxErr error = json.Unmarshal([]byte("{"), &struct{}{})
	var typeErr error = json.Unmarshal([]byte(`{"a":"x"}`), &struct{ A int }{})

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"network", Network("get catalog", errors.New("boom")), KindNetwork},
		{"wrapped decode", fmt.Errorf("manifest: %w", Decode("parse", errors.New("bad"))), KindDecode},
		{"path error", statErr, KindIO},
		{"json syntax", syntaxErr, KindDecode},
		{"json type", typeErr, KindDecode},
		{"url error", &url.Error{Op: "Get", URL: "http://x", Err: errors.New("refused")}, KindNetwork},
		{"unknown", errors.New("mystery"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestErrorMessageAndIs(t *testing.T) {
	err := fmt.Errorf("sync assets: %w", IO("write object", errors.New("disk full")))

	require.True(t, errors.Is(err, ErrIO))
	require.False(t, errors.Is(err, ErrNetwork))
	require.Equal(t, "sync assets: write object: disk full", err.Error())

	detail := Newf(KindNetwork, "fetch jar", "checksum mismatch for %s", "client.jar")
	require.Equal(t, "fetch jar: checksum mismatch for client.jar", detail.Error())
}

func TestFaultPanicsWithPrecondition(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		e, ok := r.(*Error)
		require.True(t, ok)
		require.Equal(t, KindPrecondition, e.Kind)
		require.Contains(t, e.Error(), "handle 7")
	}()

	Fault("handle %d already consumed", 7)
}
