package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/accounthub/account-service/pkg/logger"
	"github.com/accounthub/account-service/pkg/metrics"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
)

// cognitoAPI is the subset of the Cognito client used here; tests substitute a fake.
type cognitoAPI interface {
	SignUp(ctx context.Context, in *cip.SignUpInput, optFns ...func(*cip.Options)) (*cip.SignUpOutput, error)
	InitiateAuth(ctx context.Context, in *cip.InitiateAuthInput, optFns ...func(*cip.Options)) (*cip.InitiateAuthOutput, error)
	ConfirmSignUp(ctx context.Context, in *cip.ConfirmSignUpInput, optFns ...func(*cip.Options)) (*cip.ConfirmSignUpOutput, error)
	AdminAddUserToGroup(ctx context.Context, in *cip.AdminAddUserToGroupInput, optFns ...func(*cip.Options)) (*cip.AdminAddUserToGroupOutput, error)
	AdminRemoveUserFromGroup(ctx context.Context, in *cip.AdminRemoveUserFromGroupInput, optFns ...func(*cip.Options)) (*cip.AdminRemoveUserFromGroupOutput, error)
	CreateGroup(ctx context.Context, in *cip.CreateGroupInput, optFns ...func(*cip.Options)) (*cip.CreateGroupOutput, error)
	GlobalSignOut(ctx context.Context, in *cip.GlobalSignOutInput, optFns ...func(*cip.Options)) (*cip.GlobalSignOutOutput, error)
}

// CognitoConfig identifies the user pool and app client.
type CognitoConfig struct {
	Region       string
	UserPoolID   string
	ClientID     string
	ClientSecret string
	// Endpoint overrides the service endpoint, e.g. a local emulator.
	Endpoint string
}

// Cognito implements Provider against an AWS Cognito user pool.
type Cognito struct {
	api cognitoAPI
	cfg CognitoConfig
}

// NewCognito loads AWS credentials from the default chain and builds the client.
func NewCognito(ctx context.Context, cfg CognitoConfig) (*Cognito, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := cip.NewFromConfig(awsCfg, func(o *cip.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newCognito(client, cfg), nil
}

func newCognito(api cognitoAPI, cfg CognitoConfig) *Cognito {
	return &Cognito{api: api, cfg: cfg}
}

// secretHash returns nil when the app client has no secret.
func (c *Cognito) secretHash(username string) *string {
	if c.cfg.ClientSecret == "" {
		return nil
	}
	return aws.String(SecretHash(username, c.cfg.ClientID, c.cfg.ClientSecret))
}

func (c *Cognito) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	attrs := []types.AttributeType{
		{Name: aws.String("email"), Value: aws.String(in.Email)},
		{Name: aws.String("custom:role"), Value: aws.String(in.Role)},
	}
	if in.Name != "" {
		attrs = append(attrs, types.AttributeType{Name: aws.String("name"), Value: aws.String(in.Name)})
	}
	out, err := c.api.SignUp(ctx, &cip.SignUpInput{
		ClientId:       aws.String(c.cfg.ClientID),
		Username:       aws.String(in.Email),
		Password:       aws.String(in.Password),
		SecretHash:     c.secretHash(in.Email),
		UserAttributes: attrs,
	})
	metrics.ObserveIdentityCall("SignUp", err)
	if err != nil {
		return nil, translate("SignUp", err)
	}
	return &SignUpResult{UserSub: aws.ToString(out.UserSub), UserConfirmed: out.UserConfirmed}, nil
}

func (c *Cognito) SignIn(ctx context.Context, email, password string) (*Tokens, error) {
	params := map[string]string{
		"USERNAME": email,
		"PASSWORD": password,
	}
	if h := c.secretHash(email); h != nil {
		params["SECRET_HASH"] = *h
	}
	out, err := c.api.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(c.cfg.ClientID),
		AuthParameters: params,
	})
	metrics.ObserveIdentityCall("InitiateAuth", err)
	if err != nil {
		return nil, translate("InitiateAuth", err)
	}
	res := out.AuthenticationResult
	if res == nil {
		logger.Warnf("sign-in for %s returned challenge %q", email, out.ChallengeName)
		return nil, &Error{Op: "InitiateAuth", Code: CodeChallengeRequired, Message: fmt.Sprintf("Additional challenge required: %s", out.ChallengeName)}
	}
	return &Tokens{
		AccessToken:  aws.ToString(res.AccessToken),
		IDToken:      aws.ToString(res.IdToken),
		RefreshToken: aws.ToString(res.RefreshToken),
		ExpiresIn:    res.ExpiresIn,
		TokenType:    aws.ToString(res.TokenType),
	}, nil
}

func (c *Cognito) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.cfg.ClientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
		SecretHash:       c.secretHash(email),
	})
	metrics.ObserveIdentityCall("ConfirmSignUp", err)
	return translate("ConfirmSignUp", err)
}

func (c *Cognito) AddUserToGroup(ctx context.Context, username, group string) error {
	_, err := c.api.AdminAddUserToGroup(ctx, &cip.AdminAddUserToGroupInput{
		UserPoolId: aws.String(c.cfg.UserPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	metrics.ObserveIdentityCall("AdminAddUserToGroup", err)
	return translate("AdminAddUserToGroup", err)
}

func (c *Cognito) RemoveUserFromGroup(ctx context.Context, username, group string) error {
	_, err := c.api.AdminRemoveUserFromGroup(ctx, &cip.AdminRemoveUserFromGroupInput{
		UserPoolId: aws.String(c.cfg.UserPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	metrics.ObserveIdentityCall("AdminRemoveUserFromGroup", err)
	return translate("AdminRemoveUserFromGroup", err)
}

func (c *Cognito) CreateGroup(ctx context.Context, group string) error {
	_, err := c.api.CreateGroup(ctx, &cip.CreateGroupInput{
		UserPoolId:  aws.String(c.cfg.UserPoolID),
		GroupName:   aws.String(group),
		Description: aws.String("Users with role " + group),
	})
	metrics.ObserveIdentityCall("CreateGroup", err)
	return translate("CreateGroup", err)
}

func (c *Cognito) GlobalSignOut(ctx context.Context, accessToken string) error {
	_, err := c.api.GlobalSignOut(ctx, &cip.GlobalSignOutInput{AccessToken: aws.String(accessToken)})
	metrics.ObserveIdentityCall("GlobalSignOut", err)
	return translate("GlobalSignOut", err)
}

// translate turns an SDK error into *Error, keeping the API error code and message.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return &Error{Op: op, Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage(), Err: err}
	}
	return &Error{Op: op, Message: err.Error(), Err: err}
}
