package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a directory entry. Email doubles as the login name.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password"` // Never expose in JSON
}
