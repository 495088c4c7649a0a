package testutil

import (
	"fmt"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// GenerateUsers returns n users with IDs user-0001 .. user-n. Genders cycle
// through male, female and an empty value; every second user is active.
func GenerateUsers(n int) []entity.User {
	genders := []string{"male", "female", ""}
	users := make([]entity.User, n)
	for i := range users {
		users[i] = entity.User{
			ID:       fmt.Sprintf("user-%04d", i+1),
			Name:     fmt.Sprintf("User %d", i+1),
			Phone:    fmt.Sprintf("90000%05d", i+1),
			Gender:   genders[i%len(genders)],
			IsActive: i%2 == 0,
		}
	}
	return users
}

// GenerateRecords returns n records with uids rec-0001 .. rec-n.
func GenerateRecords(n int) []entity.Record {
	records := make([]entity.Record, n)
	for i := range records {
		records[i] = entity.Record{
			UID:       fmt.Sprintf("rec-%04d", i+1),
			Title:     fmt.Sprintf("Record %d", i+1),
			MediaType: entity.MediaTypes[i%len(entity.MediaTypes)],
		}
	}
	return records
}
