// internal/models/account.go
package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"ac-dispatch-workers/internal/matching"
)

type Role string

const (
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
	RoleAdmin      Role = "admin"
)

var ErrUnknownRole = errors.New("unknown account role")

// Profile is the role-specific part of an account. Only the types in this
// package implement it.
type Profile interface {
	Role() Role
	isProfile()
}

// TechnicianMetadata is the technician-only part of an account record.
type TechnicianMetadata struct {
	Skills                []matching.Skill            `json:"skills"`
	ServiceAreas          []string                    `json:"serviceAreas"`
	AvailabilityStatus    matching.AvailabilityStatus `json:"availabilityStatus"`
	Level                 matching.Level              `json:"level"`
	YearsOfExperience     int                         `json:"yearsOfExperience"`
	CurrentJobIDs         []string                    `json:"currentJobIds"`
	MaxJobsPerDay         int                         `json:"maxJobsPerDay"`
	PrimarySpecialization matching.Skill              `json:"primarySpecialization,omitempty"`
	IsTeamLead            bool                        `json:"isTeamLead"`
	TotalJobsCompleted    int                         `json:"totalJobsCompleted"`
	TotalJobsAssigned     int                         `json:"totalJobsAssigned"`
	AverageRating         float64                     `json:"averageRating"`
	FirstTimeFixRate      float64                     `json:"firstTimeFixRate"`
	AverageJobDuration    float64                     `json:"averageJobDuration"`
	HasVehicle            bool                        `json:"hasVehicle"`
	HasToolKit            bool                        `json:"hasToolKit"`
	IsEmergencyTechnician bool                        `json:"isEmergencyTechnician"`
}

func (TechnicianMetadata) Role() Role { return RoleTechnician }
func (TechnicianMetadata) isProfile() {}

type CustomerMetadata struct {
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	PreferredArea string `json:"preferredArea,omitempty"`
	TotalBookings int    `json:"totalBookings"`
}

func (CustomerMetadata) Role() Role { return RoleCustomer }
func (CustomerMetadata) isProfile() {}

type AdminMetadata struct {
	Department  string   `json:"department,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

func (AdminMetadata) Role() Role { return RoleAdmin }
func (AdminMetadata) isProfile() {}

// Account is a platform user with exactly one role profile.
type Account struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"displayName"`
	Contact     matching.Contact `json:"contact"`
	Profile     Profile          `json:"-"`
}

func (a Account) Role() Role {
	if a.Profile == nil {
		return ""
	}
	return a.Profile.Role()
}

// Technician returns the engine view of the account, or false when the
// account is not a technician.
func (a Account) Technician() (matching.TechnicianProfile, bool) {
	var md TechnicianMetadata
	switch p := a.Profile.(type) {
	case TechnicianMetadata:
		md = p
	case *TechnicianMetadata:
		if p == nil {
			return matching.TechnicianProfile{}, false
		}
		md = *p
	default:
		return matching.TechnicianProfile{}, false
	}

	return matching.TechnicianProfile{
		ID:                    a.ID,
		DisplayName:           a.DisplayName,
		Contact:               a.Contact,
		Skills:                md.Skills,
		ServiceAreas:          md.ServiceAreas,
		AvailabilityStatus:    md.AvailabilityStatus,
		Level:                 md.Level,
		YearsOfExperience:     md.YearsOfExperience,
		CurrentJobIDs:         md.CurrentJobIDs,
		MaxJobsPerDay:         md.MaxJobsPerDay,
		PrimarySpecialization: md.PrimarySpecialization,
		IsTeamLead:            md.IsTeamLead,
		TotalJobsCompleted:    md.TotalJobsCompleted,
		TotalJobsAssigned:     md.TotalJobsAssigned,
		AverageRating:         md.AverageRating,
		FirstTimeFixRate:      md.FirstTimeFixRate,
		AverageJobDuration:    md.AverageJobDuration,
		HasVehicle:            md.HasVehicle,
		HasToolKit:            md.HasToolKit,
		IsEmergencyTechnician: md.IsEmergencyTechnician,
	}, true
}

type accountWire struct {
	ID          string           `json:"id"`
	DisplayName string           `json:"displayName"`
	Contact     matching.Contact `json:"contact"`
	Role        Role             `json:"role"`
	Metadata    json.RawMessage  `json:"metadata,omitempty"`
}

func (a Account) MarshalJSON() ([]byte, error) {
	w := accountWire{
		ID:          a.ID,
		DisplayName: a.DisplayName,
		Contact:     a.Contact,
		Role:        a.Role(),
	}
	if a.Profile != nil {
		md, err := json.Marshal(a.Profile)
		if err != nil {
			return nil, err
		}
		w.Metadata = md
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the metadata object according to the role field.
func (a *Account) UnmarshalJSON(data []byte) error {
	var w accountWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	profile, err := DecodeProfile(w.Role, w.Metadata)
	if err != nil {
		return err
	}
	*a = Account{
		ID:          w.ID,
		DisplayName: w.DisplayName,
		Contact:     w.Contact,
		Profile:     profile,
	}
	return nil
}

// DecodeProfile decodes role metadata. Empty metadata yields a zero profile.
func DecodeProfile(role Role, metadata []byte) (Profile, error) {
	empty := len(metadata) == 0 || string(metadata) == "null"
	switch role {
	case RoleTechnician:
		var md TechnicianMetadata
		if !empty {
			if err := json.Unmarshal(metadata, &md); err != nil {
				return nil, fmt.Errorf("decode technician metadata: %w", err)
			}
		}
		return md, nil
	case RoleCustomer:
		var md CustomerMetadata
		if !empty {
			if err := json.Unmarshal(metadata, &md); err != nil {
				return nil, fmt.Errorf("decode customer metadata: %w", err)
			}
		}
		return md, nil
	case RoleAdmin:
		var md AdminMetadata
		if !empty {
			if err := json.Unmarshal(metadata, &md); err != nil {
				return nil, fmt.Errorf("decode admin metadata: %w", err)
			}
		}
		return md, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
}
