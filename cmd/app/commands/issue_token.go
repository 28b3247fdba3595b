package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	authUseCase "github.com/opspilot/platform/internal/auth/usecase"
)

// RunIssueToken prints a bearer token for an existing active employee without
// asking for the password. The token itself is never logged.
func RunIssueToken(
	ctx context.Context,
	useCase authUseCase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	email string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	issued, err := useCase.IssueToken(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("token issued from cli", slog.Time("expires_at", issued.ExpiresAt))

	if format == FormatJSON {
		return writeJSON(writer, map[string]any{
			"token":      issued.Token,
			"type":       issued.TokenType,
			"expires_at": issued.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}

	_, err = fmt.Fprintf(writer, "%s\nExpires at: %s\n", issued.Token, issued.ExpiresAt.UTC().Format(time.RFC3339))
	return err
}
