// Package proto is the wire contract between the client and the auth
// gateway: the gRPC service securemvp.auth.v1.AuthGateway whose messages
// travel as google.protobuf.Struct values with fixed field names.
package proto

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Field names used in the Struct messages.
const (
	FieldIdentity    = "identity"
	FieldPassword    = "password"
	FieldSuccess     = "success"
	FieldMessage     = "message"
	FieldReason      = "reason"
	FieldAccessToken = "access_token"
	FieldStatus      = "status"
	FieldSubject     = "subject"
)

// Structured rejection reasons carried in the reason field.
const (
	ReasonAccountNotFound    = "account_not_found"
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonAlreadyExists      = "already_exists"
	ReasonInvalidInput       = "invalid_input"
)

const StatusOK = "OK"

type LoginRequest struct {
	Identity string
	Password string
}

type LoginResponse struct {
	Success     bool
	Message     string
	Identity    string
	AccessToken string
	Reason      string
}

type RegisterRequest struct {
	Identity string
	Password string
}

type RegisterResponse struct {
	Success bool
	Message string
	Reason  string
}

type PingRequest struct{}

type PingResponse struct {
	Status string
	// Subject is the identity of the presented access token, if any.
	Subject string
}

func (m *LoginRequest) ToStruct() *structpb.Struct {
	return newStruct(map[string]*structpb.Value{
		FieldIdentity: structpb.NewStringValue(m.Identity),
		FieldPassword: structpb.NewStringValue(m.Password),
	})
}

func (m *LoginResponse) ToStruct() *structpb.Struct {
	return newStruct(map[string]*structpb.Value{
		FieldSuccess:     structpb.NewBoolValue(m.Success),
		FieldMessage:     structpb.NewStringValue(m.Message),
		FieldIdentity:    structpb.NewStringValue(m.Identity),
		FieldAccessToken: structpb.NewStringValue(m.AccessToken),
		FieldReason:      structpb.NewStringValue(m.Reason),
	})
}

func (m *RegisterRequest) ToStruct() *structpb.Struct {
	return newStruct(map[string]*structpb.Value{
		FieldIdentity: structpb.NewStringValue(m.Identity),
		FieldPassword: structpb.NewStringValue(m.Password),
	})
}

func (m *RegisterResponse) ToStruct() *structpb.Struct {
	return newStruct(map[string]*structpb.Value{
		FieldSuccess: structpb.NewBoolValue(m.Success),
		FieldMessage: structpb.NewStringValue(m.Message),
		FieldReason:  structpb.NewStringValue(m.Reason),
	})
}

func (m *PingRequest) ToStruct() *structpb.Struct {
	return newStruct(nil)
}

func (m *PingResponse) ToStruct() *structpb.Struct {
	return newStruct(map[string]*structpb.Value{
		FieldStatus:  structpb.NewStringValue(m.Status),
		FieldSubject: structpb.NewStringValue(m.Subject),
	})
}

func LoginRequestFromStruct(s *structpb.Struct) (*LoginRequest, error) {
	r := reader{s: s}
	m := &LoginRequest{Identity: r.str(FieldIdentity), Password: r.str(FieldPassword)}
	return m, r.err
}

func LoginResponseFromStruct(s *structpb.Struct) (*LoginResponse, error) {
	r := reader{s: s}
	m := &LoginResponse{
		Success:     r.boolean(FieldSuccess),
		Message:     r.str(FieldMessage),
		Identity:    r.str(FieldIdentity),
		AccessToken: r.str(FieldAccessToken),
		Reason:      r.str(FieldReason),
	}
	return m, r.err
}

func RegisterRequestFromStruct(s *structpb.Struct) (*RegisterRequest, error) {
	r := reader{s: s}
	m := &RegisterRequest{Identity: r.str(FieldIdentity), Password: r.str(FieldPassword)}
	return m, r.err
}

func RegisterResponseFromStruct(s *structpb.Struct) (*RegisterResponse, error) {
	r := reader{s: s}
	m := &RegisterResponse{
		Success: r.boolean(FieldSuccess),
		Message: r.str(FieldMessage),
		Reason:  r.str(FieldReason),
	}
	return m, r.err
}

func PingRequestFromStruct(*structpb.Struct) (*PingRequest, error) {
	return &PingRequest{}, nil
}

func PingResponseFromStruct(s *structpb.Struct) (*PingResponse, error) {
	r := reader{s: s}
	m := &PingResponse{Status: r.str(FieldStatus), Subject: r.str(FieldSubject)}
	return m, r.err
}

func newStruct(fields map[string]*structpb.Value) *structpb.Struct {
	if fields == nil {
		fields = map[string]*structpb.Value{}
	}
	return &structpb.Struct{Fields: fields}
}

// reader extracts typed fields and remembers the first type mismatch.
// Missing fields read as zero values.
type reader struct {
	s   *structpb.Struct
	err error
}

func (r *reader) value(name string) *structpb.Value {
	if r.s == nil {
		return nil
	}
	return r.s.GetFields()[name]
}

func (r *reader) str(name string) string {
	v := r.value(name)
	if v == nil {
		return ""
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		r.fail(name, "string")
		return ""
	}
	return v.GetStringValue()
}

func (r *reader) boolean(name string) bool {
	v := r.value(name)
	if v == nil {
		return false
	}
	if _, ok := v.GetKind().(*structpb.Value_BoolValue); !ok {
		r.fail(name, "bool")
		return false
	}
	return v.GetBoolValue()
}

func (r *reader) fail(name, want string) {
	if r.err == nil {
		r.err = fmt.Errorf("field %q: want %s", name, want)
	}
}
