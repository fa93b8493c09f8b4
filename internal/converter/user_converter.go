package converter

import (
	"strings"

	"clinic-booking/internal/delivery/dto"
	"clinic-booking/internal/domain/entity"
)

// anonymousPatient labels queue entries whose owner has no usable name.
const anonymousPatient = "Patient"

// UserToResponse converts a User entity to UserResponse DTO.
// role is the effective role, which also accounts for the staff flag.
func UserToResponse(user *entity.User, role entity.Role) *dto.UserResponse {
	if user == nil {
		return nil
	}

	response := &dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: user.DefaultDisplayName(),
		Role:        string(role),
		IsStaff:     user.IsStaff,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}

	if user.Profile != nil && user.Profile.DisplayName != "" {
		response.DisplayName = user.Profile.DisplayName
	}

	return response
}

// PatientLabel is the name shown to other patients in the waiting queue.
// It never exposes an email address.
func PatientLabel(user *entity.User) string {
	if user == nil {
		return anonymousPatient
	}

	var candidates []string
	if user.Patient != nil {
		candidates = append(candidates, user.Patient.Name)
	}
	if user.Profile != nil {
		candidates = append(candidates, user.Profile.DisplayName)
	}
	candidates = append(candidates, user.FullName())

	for _, name := range candidates {
		name = strings.TrimSpace(name)
		if name != "" && !strings.Contains(name, "@") {
			return name
		}
	}
	return anonymousPatient
}

func ProfileToResponse(profile *entity.UserProfile, hasPatient bool) *dto.ProfileResponse {
	if profile == nil {
		return nil
	}
	return &dto.ProfileResponse{
		UserID:      profile.UserID,
		Role:        string(profile.Role),
		DisplayName: profile.DisplayName,
		HasPatient:  hasPatient,
	}
}

func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	response := &dto.PatientResponse{
		ID:        patient.ID,
		Name:      patient.Name,
		Balance:   "0.00",
		CreatedAt: patient.CreatedAt,
	}
	if patient.Account != nil {
		response.Balance = patient.Account.Balance.StringFixed(2)
	}
	return response
}
