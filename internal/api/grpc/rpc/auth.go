package rpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

const AuthServiceName = "kalyxon.v1.Auth"

const (
	AuthSignUpMethod               = "/" + AuthServiceName + "/SignUp"
	AuthSignInMethod               = "/" + AuthServiceName + "/SignIn"
	AuthSignOutMethod              = "/" + AuthServiceName + "/SignOut"
	AuthResetPasswordMethod        = "/" + AuthServiceName + "/ResetPassword"
	AuthConfirmPasswordResetMethod = "/" + AuthServiceName + "/ConfirmPasswordReset"
	AuthCurrentUserMethod          = "/" + AuthServiceName + "/CurrentUser"
)

type Empty struct{}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

type AuthResponse struct {
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ResetPasswordRequest struct {
	Email string `json:"email"`
}

type ConfirmPasswordResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// AuthServer is the server API of kalyxon.v1.Auth.
type AuthServer interface {
	SignUp(context.Context, *SignUpRequest) (*AuthResponse, error)
	SignIn(context.Context, *SignInRequest) (*AuthResponse, error)
	SignOut(context.Context, *Empty) (*Empty, error)
	ResetPassword(context.Context, *ResetPasswordRequest) (*Empty, error)
	ConfirmPasswordReset(context.Context, *ConfirmPasswordResetRequest) (*Empty, error)
	CurrentUser(context.Context, *Empty) (*User, error)
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(AuthServiceName, "SignUp", func(srv any, ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
			return srv.(AuthServer).SignUp(ctx, req)
		}),
		unary(AuthServiceName, "SignIn", func(srv any, ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
			return srv.(AuthServer).SignIn(ctx, req)
		}),
		unary(AuthServiceName, "SignOut", func(srv any, ctx context.Context, req *Empty) (*Empty, error) {
			return srv.(AuthServer).SignOut(ctx, req)
		}),
		unary(AuthServiceName, "ResetPassword", func(srv any, ctx context.Context, req *ResetPasswordRequest) (*Empty, error) {
			return srv.(AuthServer).ResetPassword(ctx, req)
		}),
		unary(AuthServiceName, "ConfirmPasswordReset", func(srv any, ctx context.Context, req *ConfirmPasswordResetRequest) (*Empty, error) {
			return srv.(AuthServer).ConfirmPasswordReset(ctx, req)
		}),
		unary(AuthServiceName, "CurrentUser", func(srv any, ctx context.Context, req *Empty) (*User, error) {
			return srv.(AuthServer).CurrentUser(ctx, req)
		}),
	},
	Metadata: "kalyxon/v1/auth",
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&authServiceDesc, srv)
}

// AuthClient is the client API of kalyxon.v1.Auth.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func (c *AuthClient) SignUp(ctx context.Context, in *SignUpRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthSignUpMethod, in, opts...)
}

func (c *AuthClient) SignIn(ctx context.Context, in *SignInRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return invoke[AuthResponse](ctx, c.cc, AuthSignInMethod, in, opts...)
}

func (c *AuthClient) SignOut(ctx context.Context, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthSignOutMethod, &Empty{}, opts...)
}

func (c *AuthClient) ResetPassword(ctx context.Context, in *ResetPasswordRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthResetPasswordMethod, in, opts...)
}

func (c *AuthClient) ConfirmPasswordReset(ctx context.Context, in *ConfirmPasswordResetRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, AuthConfirmPasswordResetMethod, in, opts...)
}

func (c *AuthClient) CurrentUser(ctx context.Context, opts ...grpc.CallOption) (*User, error) {
	return invoke[User](ctx, c.cc, AuthCurrentUserMethod, &Empty{}, opts...)
}
