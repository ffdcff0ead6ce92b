package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"graphseal/internal/errs"
)

func TestError_IsMatchesCodeThroughWrapping(t *testing.T) {
	base := errs.New(errs.AliasMismatch, "Alias not same!")
	wrapped := fmt.Errorf("check: %w", base)

	require.True(t, errs.Is(wrapped, errs.AliasMismatch))
	require.False(t, errs.Is(wrapped, errs.HashMismatch))
	require.Equal(t, errs.AliasMismatch, errs.CodeOf(wrapped))
	require.Equal(t, "Alias not same!", errs.ReasonOf(wrapped))
}

func TestError_CauseIsReachable(t *testing.T) {
	cause := errors.New("boom")
	err := errs.Wrap(errs.DecryptionFailed, "could not decrypt", cause)

	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, err, errs.DecryptionFailed)
	require.Equal(t, "could not decrypt: boom", err.Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	require.Equal(t, errs.Code(""), errs.CodeOf(errors.New("x")))
	require.Equal(t, errs.InvalidPoint, errs.CodeOf(fmt.Errorf("w: %w", errs.InvalidPoint)))
}

func TestDiagnostics_KeepsLast(t *testing.T) {
	var d errs.Diagnostics
	require.NoError(t, d.Last())

	_ = d.Record(errs.New(errs.NoSigningKey, "no signing key"))
	_ = d.Record(nil)
	second := d.Record(errs.New(errs.SignatureMismatch, "signature mismatch"))

	require.Equal(t, second, d.Last())
	d.Reset()
	require.NoError(t, d.Last())
}
