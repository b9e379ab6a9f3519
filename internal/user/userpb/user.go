// Package userpb holds the wire contract of the user service.
package userpb

import (
	"context"
	"time"

	"github.com/kiribu/budget-buddy/internal/pkg/rpc"
	"google.golang.org/grpc"
)

const ServiceName = "budgetbuddy.user.v1.UserService"

const (
	GetOrCreateUserMethod     = "/" + ServiceName + "/GetOrCreateUser"
	GetUserByTelegramIdMethod = "/" + ServiceName + "/GetUserByTelegramId"
	GetOrCreateInviteMethod   = "/" + ServiceName + "/GetOrCreateInvite"
)

type GetOrCreateUserRequest struct {
	TelegramId   int64  `json:"telegram_id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	InviteCode   string `json:"invite_code,omitempty"`
}

type GetUserByTelegramIdRequest struct {
	TelegramId int64 `json:"telegram_id"`
}

type Inviter struct {
	UserId    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

type UserResponse struct {
	UserId        int64     `json:"user_id"`
	TelegramId    int64     `json:"telegram_id"`
	Username      string    `json:"username,omitempty"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name,omitempty"`
	LanguageCode  string    `json:"language_code,omitempty"`
	BudgetOwnerId int64     `json:"budget_owner_id"`
	Inviter       *Inviter  `json:"inviter,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type GetOrCreateInviteRequest struct {
	TelegramId int64 `json:"telegram_id"`
}

type InviteResponse struct {
	Code string `json:"code"`
}

type UserServiceServer interface {
	GetOrCreateUser(ctx context.Context, req *GetOrCreateUserRequest) (*UserResponse, error)
	GetUserByTelegramId(ctx context.Context, req *GetUserByTelegramIdRequest) (*UserResponse, error)
	GetOrCreateInvite(ctx context.Context, req *GetOrCreateInviteRequest) (*InviteResponse, error)
}

var UserServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UserServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetOrCreateUser",
			Handler:    rpc.Unary(GetOrCreateUserMethod, UserServiceServer.GetOrCreateUser),
		},
		{
			MethodName: "GetUserByTelegramId",
			Handler:    rpc.Unary(GetUserByTelegramIdMethod, UserServiceServer.GetUserByTelegramId),
		},
		{
			MethodName: "GetOrCreateInvite",
			Handler:    rpc.Unary(GetOrCreateInviteMethod, UserServiceServer.GetOrCreateInvite),
		},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterUserServiceServer(s grpc.ServiceRegistrar, srv UserServiceServer) {
	s.RegisterService(&UserServiceDesc, srv)
}

type UserServiceClient interface {
	GetOrCreateUser(ctx context.Context, req *GetOrCreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetUserByTelegramId(ctx context.Context, req *GetUserByTelegramIdRequest, opts ...grpc.CallOption) (*UserResponse, error)
	GetOrCreateInvite(ctx context.Context, req *GetOrCreateInviteRequest, opts ...grpc.CallOption) (*InviteResponse, error)
}

type userServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUserServiceClient(cc grpc.ClientConnInterface) UserServiceClient {
	return &userServiceClient{cc: cc}
}

func (c *userServiceClient) GetOrCreateUser(ctx context.Context, req *GetOrCreateUserRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, GetOrCreateUserMethod, req, opts...)
}

func (c *userServiceClient) GetUserByTelegramId(ctx context.Context, req *GetUserByTelegramIdRequest, opts ...grpc.CallOption) (*UserResponse, error) {
	return rpc.Invoke[UserResponse](ctx, c.cc, GetUserByTelegramIdMethod, req, opts...)
}

func (c *userServiceClient) GetOrCreateInvite(ctx context.Context, req *GetOrCreateInviteRequest, opts ...grpc.CallOption) (*InviteResponse, error) {
	return rpc.Invoke[InviteResponse](ctx, c.cc, GetOrCreateInviteMethod, req, opts...)
}
