package middleware

import "context"

type contextKey string

const (
	ctxUserID      contextKey = "user_id"
	ctxAccountType contextKey = "account_type"
	ctxAccessID    contextKey = "access_id"
	ctxFullName    contextKey = "full_name"
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func AccountTypeFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccountType)
}

func AccessIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxAccessID)
}

func FullNameFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxFullName)
}

// WithUserID seeds the user id, mainly for tests that bypass Auth.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithAccountType seeds the account type, mainly for tests that bypass Auth.
func WithAccountType(ctx context.Context, accountType string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountType, accountType)
}
