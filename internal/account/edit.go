package account

import (
	"context"
	"errors"
	"strings"

	"github.com/accounthub/account-service/internal/identity"
	"github.com/accounthub/account-service/internal/models"
	"github.com/accounthub/account-service/internal/users"
	"github.com/accounthub/account-service/pkg/apperror"
	"github.com/accounthub/account-service/pkg/logger"
	"github.com/accounthub/account-service/pkg/principal"
	"github.com/accounthub/account-service/pkg/validate"
)

// EditAccount updates the profile identified by req.Email.
//
// Any caller may change the name of their own profile. Admins (members of
// the admin group) may edit any profile and change its role; a role change
// moves the user between provider groups before the store is written, and
// aborts without touching the store if the provider refuses. Every edit
// marks the profile onboarded.
func (s *Service) EditAccount(ctx context.Context, req EditRequest, claims *principal.Claims) (*models.User, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperror.BadRequest("Email is required to identify the user to update")
	}
	email, err := validate.Email(req.Email)
	if err != nil {
		return nil, err
	}
	if claims == nil || claims.Subject == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	isAdmin := claims.IsAdmin()

	target, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Wrap(err, "Error finding user!")
	}
	if target == nil {
		return nil, apperror.NotFound("User not found")
	}
	if !isAdmin && target.ID != claims.Subject {
		return nil, apperror.Forbidden("Access denied! You can only update your own account.")
	}

	newRole := ""
	if isAdmin && req.Role != nil {
		newRole = strings.ToLower(strings.TrimSpace(*req.Role))
		if newRole != "" {
			if err := validateRole(newRole); err != nil {
				return nil, apperror.BadRequest("Invalid role: " + err.Error())
			}
		}
	}

	if newRole != "" && newRole != target.Role {
		if err := s.syncRoleGroups(ctx, target.ID, target.Role, newRole); err != nil {
			logger.Errorf("role sync for %s (%s -> %s): %v", target.ID, target.Role, newRole, err)
			return nil, roleSyncError(err)
		}
		target.Role = newRole
	}
	if req.Name != nil {
		target.Name = strings.TrimSpace(*req.Name)
	}
	target.IsOnboarded = true

	if err := s.repo.Update(ctx, target); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, apperror.NotFound("User not found")
		}
		logger.Errorf("update user %s: %v", target.ID, err)
		return nil, apperror.Wrap(err, "Error updating user!")
	}
	return target, nil
}

// syncRoleGroups moves username from the oldRole group to the newRole group,
// creating the new group on demand. A missing old group counts as not a member.
func (s *Service) syncRoleGroups(ctx context.Context, username, oldRole, newRole string) error {
	if oldRole != "" {
		err := s.idp.RemoveUserFromGroup(ctx, username, oldRole)
		if err != nil && !identity.IsCode(err, identity.CodeResourceNotFound) {
			return err
		}
	}

	err := s.idp.AddUserToGroup(ctx, username, newRole)
	if err == nil {
		return nil
	}
	if !identity.IsCode(err, identity.CodeResourceNotFound) {
		return err
	}

	logger.Infof("group %q does not exist, creating it", newRole)
	if err := s.idp.CreateGroup(ctx, newRole); err != nil && !identity.IsCode(err, identity.CodeGroupExists) {
		return err
	}
	return s.idp.AddUserToGroup(ctx, username, newRole)
}
