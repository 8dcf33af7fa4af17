package cognito

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "AWSCognitoIdentityProviderService"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterException"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterException"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the Cognito IdP JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "cognito",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateUserPool":   action(r.CreateUserPool),
			"DeleteUserPool":   actionNoOutput(r.DeleteUserPool),
			"DescribeUserPool": action(r.DescribeUserPool),
			"ListUserPools":    action(r.ListUserPools),
			"UpdateUserPool":   actionNoOutput(r.UpdateUserPool),

			"AdminCreateUser":           action(r.AdminCreateUser),
			"AdminDeleteUser":           actionNoOutput(r.AdminDeleteUser),
			"AdminGetUser":              action(r.AdminGetUser),
			"AdminSetUserPassword":      actionNoOutput(r.AdminSetUserPassword),
			"AdminEnableUser":           actionNoOutput(r.AdminEnableUser),
			"AdminDisableUser":          actionNoOutput(r.AdminDisableUser),
			"AdminResetUserPassword":    actionNoOutput(r.AdminResetUserPassword),
			"AdminUpdateUserAttributes": actionNoOutput(r.AdminUpdateUserAttributes),
			"ListUsers":                 action(r.ListUsers),

			"CreateUserPoolClient":   action(r.CreateUserPoolClient),
			"DeleteUserPoolClient":   actionNoOutput(r.DeleteUserPoolClient),
			"DescribeUserPoolClient": action(r.DescribeUserPoolClient),
			"ListUserPoolClients":    action(r.ListUserPoolClients),
			"UpdateUserPoolClient":   action(r.UpdateUserPoolClient),

			"CreateGroup":              action(r.CreateGroup),
			"DeleteGroup":              actionNoOutput(r.DeleteGroup),
			"GetGroup":                 action(r.GetGroup),
			"ListGroups":               action(r.ListGroups),
			"AdminAddUserToGroup":      actionNoOutput(r.AdminAddUserToGroup),
			"AdminRemoveUserFromGroup": actionNoOutput(r.AdminRemoveUserFromGroup),
			"AdminListGroupsForUser":   action(r.AdminListGroupsForUser),
			"ListUsersInGroup":         action(r.ListUsersInGroup),

			"InitiateAuth":          action(r.InitiateAuth),
			"AdminInitiateAuth":     action(r.AdminInitiateAuth),
			"SignUp":                action(r.SignUp),
			"ConfirmSignUp":         actionNoOutput(r.ConfirmSignUp),
			"ForgotPassword":        action(r.ForgotPassword),
			"ConfirmForgotPassword": actionNoOutput(r.ConfirmForgotPassword),
		},
	}
}
