package cognito

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestPool(t *testing.T) (*Registry, string, string) {
	t.Helper()
	r := NewRegistry("us-east-1", "000000000000")
	pool, err := r.CreateUserPool(&CreateUserPoolRequest{PoolName: "app"})
	require.NoError(t, err)
	client, err := r.CreateUserPoolClient(&CreateUserPoolClientRequest{
		UserPoolID: pool.UserPool.ID, ClientName: "web",
	})
	require.NoError(t, err)
	return r, pool.UserPool.ID, client.UserPoolClient.ClientID
}

func TestUserPoolLifecycle(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	created, err := r.CreateUserPool(&CreateUserPoolRequest{PoolName: "app"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", created.UserPool.Status)
	assert.Contains(t, created.UserPool.ARN, ":userpool/us-east-1_")

	described, err := r.DescribeUserPool(&DescribeUserPoolRequest{UserPoolID: created.UserPool.ID})
	require.NoError(t, err)
	assert.Equal(t, "app", described.UserPool.Name)

	require.NoError(t, r.DeleteUserPool(&DeleteUserPoolRequest{UserPoolID: created.UserPool.ID}))
	err = r.DeleteUserPool(&DeleteUserPoolRequest{UserPoolID: created.UserPool.ID})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestAdminUserLifecycle(t *testing.T) {
	r, poolID, _ := newTestPool(t)

	created, err := r.AdminCreateUser(&AdminCreateUserRequest{
		UserPoolID: poolID,
		Username:   "alice",
		UserAttributes: []AttributeType{
			{Name: "email", Value: "alice@example.com"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "FORCE_CHANGE_PASSWORD", created.User.UserStatus)
	assert.True(t, created.User.Enabled)

	_, err = r.AdminCreateUser(&AdminCreateUserRequest{UserPoolID: poolID, Username: "alice"})
	assert.Equal(t, "UsernameExistsException", wire.AsAPIError(err).Code)

	require.NoError(t, r.AdminSetUserPassword(&AdminSetUserPasswordRequest{
		UserPoolID: poolID, Username: "alice", Password: "s3cret", Permanent: true,
	}))
	got, err := r.AdminGetUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", got.UserStatus)

	require.NoError(t, r.AdminDisableUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"}))
	got, err = r.AdminGetUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"})
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, r.AdminDeleteUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"}))
	_, err = r.AdminGetUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"})
	assert.Equal(t, "UserNotFoundException", wire.AsAPIError(err).Code)
}

func TestGroups(t *testing.T) {
	r, poolID, _ := newTestPool(t)
	_, err := r.AdminCreateUser(&AdminCreateUserRequest{UserPoolID: poolID, Username: "alice"})
	require.NoError(t, err)

	_, err = r.CreateGroup(&CreateGroupRequest{UserPoolID: poolID, GroupName: "admins"})
	require.NoError(t, err)
	_, err = r.CreateGroup(&CreateGroupRequest{UserPoolID: poolID, GroupName: "admins"})
	assert.Equal(t, "GroupExistsException", wire.AsAPIError(err).Code)

	require.NoError(t, r.AdminAddUserToGroup(&AdminGroupUserRequest{
		UserPoolID: poolID, Username: "alice", GroupName: "admins",
	}))
	groups, err := r.AdminListGroupsForUser(&AdminListGroupsForUserRequest{
		UserPoolID: poolID, Username: "alice",
	})
	require.NoError(t, err)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "admins", groups.Groups[0].GroupName)

	users, err := r.ListUsersInGroup(&ListUsersInGroupRequest{UserPoolID: poolID, GroupName: "admins"})
	require.NoError(t, err)
	require.Len(t, users.Users, 1)

	require.NoError(t, r.AdminRemoveUserFromGroup(&AdminGroupUserRequest{
		UserPoolID: poolID, Username: "alice", GroupName: "admins",
	}))
	users, err = r.ListUsersInGroup(&ListUsersInGroupRequest{UserPoolID: poolID, GroupName: "admins"})
	require.NoError(t, err)
	assert.Empty(t, users.Users)
}

func TestInitiateAuthMintsJWTs(t *testing.T) {
	r, poolID, clientID := newTestPool(t)
	_, err := r.AdminCreateUser(&AdminCreateUserRequest{UserPoolID: poolID, Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, r.AdminSetUserPassword(&AdminSetUserPasswordRequest{
		UserPoolID: poolID, Username: "alice", Password: "s3cret", Permanent: true,
	}))

	resp, err := r.InitiateAuth(&InitiateAuthRequest{
		AuthFlow: "USER_PASSWORD_AUTH",
		ClientID: clientID,
		AuthParameters: map[string]string{
			"USERNAME": "alice", "PASSWORD": "s3cret",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.AuthenticationResult)
	assert.Equal(t, "Bearer", resp.AuthenticationResult.TokenType)
	assert.Equal(t, 3600, resp.AuthenticationResult.ExpiresIn)

	token, _, err := jwt.NewParser().ParseUnverified(resp.AuthenticationResult.IDToken, jwt.MapClaims{})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "id", claims["token_use"])
	assert.Equal(t, "alice", claims["cognito:username"])
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/"+poolID, claims["iss"])

	access, _, err := jwt.NewParser().ParseUnverified(resp.AuthenticationResult.AccessToken, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "access", access.Claims.(jwt.MapClaims)["token_use"])
}

func TestAuthRejectsDisabledUser(t *testing.T) {
	r, poolID, clientID := newTestPool(t)
	_, err := r.AdminCreateUser(&AdminCreateUserRequest{UserPoolID: poolID, Username: "alice"})
	require.NoError(t, err)
	require.NoError(t, r.AdminDisableUser(&AdminUserRequest{UserPoolID: poolID, Username: "alice"}))

	_, err = r.AdminInitiateAuth(&AdminInitiateAuthRequest{
		UserPoolID: poolID, ClientID: clientID, AuthFlow: "ADMIN_USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{"USERNAME": "alice"},
	})
	assert.Equal(t, "NotAuthorizedException", wire.AsAPIError(err).Code)
}

func TestSignUpFlow(t *testing.T) {
	r, _, clientID := newTestPool(t)

	signedUp, err := r.SignUp(&SignUpRequest{
		ClientID: clientID, Username: "bob", Password: "pw",
		UserAttributes: []AttributeType{{Name: "email", Value: "bob@example.com"}},
	})
	require.NoError(t, err)
	assert.False(t, signedUp.UserConfirmed)
	assert.NotEmpty(t, signedUp.UserSub)

	require.NoError(t, r.ConfirmSignUp(&ConfirmSignUpRequest{
		ClientID: clientID, Username: "bob", ConfirmationCode: "000000",
	}))

	_, err = r.ForgotPassword(&ForgotPasswordRequest{ClientID: clientID, Username: "bob"})
	require.NoError(t, err)
	require.NoError(t, r.ConfirmForgotPassword(&ConfirmForgotPasswordRequest{
		ClientID: clientID, Username: "bob", ConfirmationCode: "000000", Password: "new-pw",
	}))

	resp, err := r.InitiateAuth(&InitiateAuthRequest{
		AuthFlow: "USER_PASSWORD_AUTH", ClientID: clientID,
		AuthParameters: map[string]string{"USERNAME": "bob", "PASSWORD": "new-pw"},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.AuthenticationResult)
}
