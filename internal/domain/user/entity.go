package user

// User represents a user entity as served by the upstream directory API.
// Users are read-only: they are never created, mutated or deleted locally.
type User struct {
	ID       int64   `json:"id"`       // ID is the externally assigned unique identifier
	Name     string  `json:"name"`     // Name is the display name of the user
	Username string  `json:"username"` // Username is the account handle
	Email    string  `json:"email"`    // Email is the contact address
	Address  Address `json:"address"`  // Address is the postal address
	Phone    string  `json:"phone"`    // Phone is a free-form phone number
	Website  string  `json:"website"`  // Website is the user's home page
	Company  Company `json:"company"`  // Company is the employer
}

// Address represents a user's postal address.
type Address struct {
	Street  string `json:"street"`
	Suite   string `json:"suite"`
	City    string `json:"city"`
	Zipcode string `json:"zipcode"`
	Geo     Geo    `json:"geo"`
}

// Geo holds coordinates exactly as the API returns them, as text.
type Geo struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

// Company represents the user's employer.
type Company struct {
	Name        string `json:"name"`
	CatchPhrase string `json:"catchPhrase"`
	BS          string `json:"bs"`
}
