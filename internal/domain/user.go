package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleClient       Role = "client"
	RoleTrainer      Role = "trainer"
	RoleNutritionist Role = "nutritionist"
	RoleAdmin        Role = "admin"
	RoleHR           Role = "hr"
)

// StaffRoles may look at other users' schedules.
var StaffRoles = []Role{RoleTrainer, RoleNutritionist, RoleAdmin, RoleHR}

// User is the slice of the user profile this service reads. Profiles are
// owned by the account service.
type User struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Role  Role               `bson:"role" json:"role"`

	// --- Client-specific ---
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsManagedBy reports whether the client is assigned to the given trainer.
func (u *User) IsManagedBy(trainerID primitive.ObjectID) bool {
	return u.TrainerID != nil && *u.TrainerID == trainerID
}
