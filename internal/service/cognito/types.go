package cognito

// Dates on the Cognito JSON protocol are epoch seconds as doubles.

type AttributeType struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type UserPoolType struct {
	ID                     string            `json:"Id"`
	Name                   string            `json:"Name"`
	ARN                    string            `json:"Arn"`
	Status                 string            `json:"Status"`
	CreationDate           float64           `json:"CreationDate"`
	LastModifiedDate       float64           `json:"LastModifiedDate"`
	EstimatedNumberOfUsers int               `json:"EstimatedNumberOfUsers"`
	AutoVerifiedAttributes []string          `json:"AutoVerifiedAttributes,omitempty"`
	UsernameAttributes     []string          `json:"UsernameAttributes,omitempty"`
	UserPoolTags           map[string]string `json:"UserPoolTags,omitempty"`
}

type UserPoolDescriptionType struct {
	ID               string  `json:"Id"`
	Name             string  `json:"Name"`
	Status           string  `json:"Status"`
	CreationDate     float64 `json:"CreationDate"`
	LastModifiedDate float64 `json:"LastModifiedDate"`
}

type UserType struct {
	Username             string          `json:"Username"`
	Attributes           []AttributeType `json:"Attributes"`
	UserCreateDate       float64         `json:"UserCreateDate"`
	UserLastModifiedDate float64         `json:"UserLastModifiedDate"`
	Enabled              bool            `json:"Enabled"`
	UserStatus           string          `json:"UserStatus"`
}

type UserPoolClientType struct {
	ClientID                   string   `json:"ClientId"`
	ClientName                 string   `json:"ClientName"`
	UserPoolID                 string   `json:"UserPoolId"`
	ClientSecret               string   `json:"ClientSecret,omitempty"`
	CreationDate               float64  `json:"CreationDate"`
	LastModifiedDate           float64  `json:"LastModifiedDate"`
	ExplicitAuthFlows          []string `json:"ExplicitAuthFlows,omitempty"`
	AllowedOAuthFlows          []string `json:"AllowedOAuthFlows,omitempty"`
	AllowedOAuthScopes         []string `json:"AllowedOAuthScopes,omitempty"`
	CallbackURLs               []string `json:"CallbackURLs,omitempty"`
	LogoutURLs                 []string `json:"LogoutURLs,omitempty"`
	PreventUserExistenceErrors string   `json:"PreventUserExistenceErrors,omitempty"`
	EnableTokenRevocation      bool     `json:"EnableTokenRevocation"`
}

type UserPoolClientDescription struct {
	ClientID   string `json:"ClientId"`
	ClientName string `json:"ClientName"`
	UserPoolID string `json:"UserPoolId"`
}

type GroupType struct {
	GroupName        string  `json:"GroupName"`
	UserPoolID       string  `json:"UserPoolId"`
	Description      string  `json:"Description,omitempty"`
	RoleARN          string  `json:"RoleArn,omitempty"`
	Precedence       *int    `json:"Precedence,omitempty"`
	CreationDate     float64 `json:"CreationDate"`
	LastModifiedDate float64 `json:"LastModifiedDate"`
}

type CreateUserPoolRequest struct {
	PoolName               string            `json:"PoolName"`
	AutoVerifiedAttributes []string          `json:"AutoVerifiedAttributes,omitempty"`
	UsernameAttributes     []string          `json:"UsernameAttributes,omitempty"`
	UserPoolTags           map[string]string `json:"UserPoolTags,omitempty"`
}

type CreateUserPoolResponse struct {
	UserPool UserPoolType `json:"UserPool"`
}

type DeleteUserPoolRequest struct {
	UserPoolID string `json:"UserPoolId"`
}

type DescribeUserPoolRequest struct {
	UserPoolID string `json:"UserPoolId"`
}

type DescribeUserPoolResponse struct {
	UserPool UserPoolType `json:"UserPool"`
}

type ListUserPoolsRequest struct {
	MaxResults int    `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type ListUserPoolsResponse struct {
	UserPools []UserPoolDescriptionType `json:"UserPools"`
	NextToken string                    `json:"NextToken,omitempty"`
}

type UpdateUserPoolRequest struct {
	UserPoolID             string            `json:"UserPoolId"`
	AutoVerifiedAttributes []string          `json:"AutoVerifiedAttributes,omitempty"`
	UserPoolTags           map[string]string `json:"UserPoolTags,omitempty"`
}

type AdminCreateUserRequest struct {
	UserPoolID        string          `json:"UserPoolId"`
	Username          string          `json:"Username"`
	UserAttributes    []AttributeType `json:"UserAttributes,omitempty"`
	TemporaryPassword string          `json:"TemporaryPassword,omitempty"`
}

type AdminCreateUserResponse struct {
	User UserType `json:"User"`
}

type AdminUserRequest struct {
	UserPoolID string `json:"UserPoolId"`
	Username   string `json:"Username"`
}

type AdminGetUserResponse struct {
	Username             string          `json:"Username"`
	UserAttributes       []AttributeType `json:"UserAttributes"`
	UserCreateDate       float64         `json:"UserCreateDate"`
	UserLastModifiedDate float64         `json:"UserLastModifiedDate"`
	Enabled              bool            `json:"Enabled"`
	UserStatus           string          `json:"UserStatus"`
}

type AdminSetUserPasswordRequest struct {
	UserPoolID string `json:"UserPoolId"`
	Username   string `json:"Username"`
	Password   string `json:"Password"`
	Permanent  bool   `json:"Permanent,omitempty"`
}

type AdminUpdateUserAttributesRequest struct {
	UserPoolID     string          `json:"UserPoolId"`
	Username       string          `json:"Username"`
	UserAttributes []AttributeType `json:"UserAttributes"`
}

type ListUsersRequest struct {
	UserPoolID      string `json:"UserPoolId"`
	Limit           int    `json:"Limit,omitempty"`
	PaginationToken string `json:"PaginationToken,omitempty"`
}

type ListUsersResponse struct {
	Users           []UserType `json:"Users"`
	PaginationToken string     `json:"PaginationToken,omitempty"`
}

type CreateUserPoolClientRequest struct {
	UserPoolID                 string   `json:"UserPoolId"`
	ClientName                 string   `json:"ClientName"`
	GenerateSecret             bool     `json:"GenerateSecret,omitempty"`
	ExplicitAuthFlows          []string `json:"ExplicitAuthFlows,omitempty"`
	AllowedOAuthFlows          []string `json:"AllowedOAuthFlows,omitempty"`
	AllowedOAuthScopes         []string `json:"AllowedOAuthScopes,omitempty"`
	CallbackURLs               []string `json:"CallbackURLs,omitempty"`
	LogoutURLs                 []string `json:"LogoutURLs,omitempty"`
	PreventUserExistenceErrors string   `json:"PreventUserExistenceErrors,omitempty"`
	EnableTokenRevocation      *bool    `json:"EnableTokenRevocation,omitempty"`
}

type CreateUserPoolClientResponse struct {
	UserPoolClient UserPoolClientType `json:"UserPoolClient"`
}

type ClientRequest struct {
	UserPoolID string `json:"UserPoolId"`
	ClientID   string `json:"ClientId"`
}

type DescribeUserPoolClientResponse struct {
	UserPoolClient UserPoolClientType `json:"UserPoolClient"`
}

type ListUserPoolClientsRequest struct {
	UserPoolID string `json:"UserPoolId"`
	MaxResults int    `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type ListUserPoolClientsResponse struct {
	UserPoolClients []UserPoolClientDescription `json:"UserPoolClients"`
	NextToken       string                      `json:"NextToken,omitempty"`
}

type UpdateUserPoolClientRequest struct {
	UserPoolID                 string   `json:"UserPoolId"`
	ClientID                   string   `json:"ClientId"`
	ClientName                 string   `json:"ClientName,omitempty"`
	ExplicitAuthFlows          []string `json:"ExplicitAuthFlows,omitempty"`
	AllowedOAuthFlows          []string `json:"AllowedOAuthFlows,omitempty"`
	AllowedOAuthScopes         []string `json:"AllowedOAuthScopes,omitempty"`
	CallbackURLs               []string `json:"CallbackURLs,omitempty"`
	LogoutURLs                 []string `json:"LogoutURLs,omitempty"`
	PreventUserExistenceErrors string   `json:"PreventUserExistenceErrors,omitempty"`
	EnableTokenRevocation      *bool    `json:"EnableTokenRevocation,omitempty"`
}

type UpdateUserPoolClientResponse struct {
	UserPoolClient UserPoolClientType `json:"UserPoolClient"`
}

type CreateGroupRequest struct {
	UserPoolID  string `json:"UserPoolId"`
	GroupName   string `json:"GroupName"`
	Description string `json:"Description,omitempty"`
	RoleARN     string `json:"RoleArn,omitempty"`
	Precedence  *int   `json:"Precedence,omitempty"`
}

type GroupResponse struct {
	Group GroupType `json:"Group"`
}

type GroupRequest struct {
	UserPoolID string `json:"UserPoolId"`
	GroupName  string `json:"GroupName"`
}

type ListGroupsRequest struct {
	UserPoolID string `json:"UserPoolId"`
	Limit      int    `json:"Limit,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type ListGroupsResponse struct {
	Groups    []GroupType `json:"Groups"`
	NextToken string      `json:"NextToken,omitempty"`
}

type AdminGroupUserRequest struct {
	UserPoolID string `json:"UserPoolId"`
	Username   string `json:"Username"`
	GroupName  string `json:"GroupName"`
}

type AdminListGroupsForUserRequest struct {
	UserPoolID string `json:"UserPoolId"`
	Username   string `json:"Username"`
	Limit      int    `json:"Limit,omitempty"`
}

type AdminListGroupsForUserResponse struct {
	Groups    []GroupType `json:"Groups"`
	NextToken string      `json:"NextToken,omitempty"`
}

type ListUsersInGroupRequest struct {
	UserPoolID string `json:"UserPoolId"`
	GroupName  string `json:"GroupName"`
	Limit      int    `json:"Limit,omitempty"`
}

type ListUsersInGroupResponse struct {
	Users     []UserType `json:"Users"`
	NextToken string     `json:"NextToken,omitempty"`
}

type InitiateAuthRequest struct {
	AuthFlow       string            `json:"AuthFlow"`
	ClientID       string            `json:"ClientId"`
	AuthParameters map[string]string `json:"AuthParameters,omitempty"`
}

type AdminInitiateAuthRequest struct {
	UserPoolID     string            `json:"UserPoolId"`
	ClientID       string            `json:"ClientId"`
	AuthFlow       string            `json:"AuthFlow"`
	AuthParameters map[string]string `json:"AuthParameters,omitempty"`
}

type AuthenticationResultType struct {
	AccessToken  string `json:"AccessToken"`
	ExpiresIn    int    `json:"ExpiresIn"`
	TokenType    string `json:"TokenType"`
	RefreshToken string `json:"RefreshToken,omitempty"`
	IDToken      string `json:"IdToken"`
}

type InitiateAuthResponse struct {
	AuthenticationResult *AuthenticationResultType `json:"AuthenticationResult,omitempty"`
	ChallengeName        string                    `json:"ChallengeName,omitempty"`
	Session              string                    `json:"Session,omitempty"`
}

type SignUpRequest struct {
	ClientID       string          `json:"ClientId"`
	Username       string          `json:"Username"`
	Password       string          `json:"Password"`
	UserAttributes []AttributeType `json:"UserAttributes,omitempty"`
}

type SignUpResponse struct {
	UserConfirmed bool   `json:"UserConfirmed"`
	UserSub       string `json:"UserSub"`
}

type ConfirmSignUpRequest struct {
	ClientID         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
}

type ForgotPasswordRequest struct {
	ClientID string `json:"ClientId"`
	Username string `json:"Username"`
}

type CodeDeliveryDetailsType struct {
	Destination    string `json:"Destination"`
	DeliveryMedium string `json:"DeliveryMedium"`
	AttributeName  string `json:"AttributeName"`
}

type ForgotPasswordResponse struct {
	CodeDeliveryDetails CodeDeliveryDetailsType `json:"CodeDeliveryDetails"`
}

type ConfirmForgotPasswordRequest struct {
	ClientID         string `json:"ClientId"`
	Username         string `json:"Username"`
	ConfirmationCode string `json:"ConfirmationCode"`
	Password         string `json:"Password"`
}
