package fixtures

import (
	"math/rand"
	"time"
)

var (
	givenNames  = []string{"Alice", "Amara", "Daniel", "Grace", "Ibrahim", "Joseph", "Mary", "Nia", "Peter", "Wanjiru"}
	familyNames = []string{"Achieng", "Banda", "Cooper", "Diallo", "Kamau", "Mensah", "Moyo", "Okafor", "Otieno", "Smith"}
	genders     = []string{"M", "F"}
)

// RandomPatient returns registration data for a random adult born before now
func RandomPatient(now time.Time) PatientRequest {
	age := 18 + rand.Intn(72)
	birth := now.AddDate(-age, 0, -rand.Intn(365))

	return PatientRequest{
		GivenName:  givenNames[rand.Intn(len(givenNames))],
		FamilyName: familyNames[rand.Intn(len(familyNames))],
		Gender:     genders[rand.Intn(len(genders))],
		BirthDate:  birth.Format(time.DateOnly),
	}
}
