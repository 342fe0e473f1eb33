package auth

import "github.com/groupcollect/groupcollect-backend/pkg/enums"

// NewAdminRegisterService builds a registration service that creates
// administrators. It is not routed; operators reach it through cmd/seed.
func NewAdminRegisterService(params RegisterServiceParams) (RegisterService, error) {
	svc, err := newRegisterService(params, enums.UserRoleAdmin)
	if err != nil {
		return nil, err
	}
	return svc, nil
}
