package models

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{in: "lazy", want: ModeLazy},
		{in: " Intensive ", want: ModeIntensive},
		{in: "", want: ModeLazy},
		{in: "turbo", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.err {
				var ime *InvalidModeError
				require.True(t, errors.As(err, &ime))
				require.Equal(t, tt.in, ime.Mode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "profiles", "default.yaml")
	require.NoError(t, cfg.Save(path))

	var loaded Config
	require.NoError(t, loaded.Load(path))
	require.Equal(t, *cfg, loaded)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "loud"
	cfg.Generate.Mode = "turbo"
	cfg.Generate.BatchRatio = 0
	cfg.Encoder.Profile = "display"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"log_level", "generate.mode", "generate.batch_ratio", "encoder.profile"} {
		require.Contains(t, err.Error(), want)
	}
}

func TestVariantString(t *testing.T) {
	v := Variant{Candidate: "аpple.com", Encoded: "xn--pple-43d.com"}
	require.Equal(t, "аpple.com,xn--pple-43d.com", v.String())
}
