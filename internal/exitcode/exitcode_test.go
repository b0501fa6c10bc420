package exitcode

import (
	"fmt"
	"testing"

	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

func TestDetermineExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, Success},
		{"plain error", fmt.Errorf("boom"), GeneralError},
		{"validation", errors.New(errors.ErrCodeSchemaInvalid, "bad port"), ValidationFailed},
		{"unresolved conflict", errors.NewConflictUnresolvedError(2), ValidationFailed},
		{"merge state missing", errors.NewMergeStateMissingError("svc-1"), ValidationFailed},
		{"gateway auth", errors.New(errors.ErrCodeGatewayAuth, "rejected"), AuthError},
		{"konnect auth", errors.NewKonnectAuthError(nil), AuthError},
		{"gateway unreachable", errors.NewGatewayUnreachableError("localhost:8001", nil), NetworkError},
		{"wrapped network error", errors.Wrap(errors.ErrCodeFileReadFailed, "outer",
			errors.New(errors.ErrCodeKonnectUnreachable, "inner")), NetworkError},
		{"pinned code", WithCode(DriftDetected, "drift detected in 3 entities"), DriftDetected},
		{"pinned partial sync", WithCode(PartialSync, "mirror write failed"), PartialSync},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineExitCode(tt.err); got != tt.want {
				t.Errorf("DetermineExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDescription(t *testing.T) {
	if Description(PartialSync) != "Partial sync (primary updated, mirror failed)" {
		t.Errorf("unexpected description: %s", Description(PartialSync))
	}
	if Description(99) != "Unknown error" {
		t.Errorf("unexpected description for unknown code: %s", Description(99))
	}
}
