package user

import "strings"

// Filter returns the users whose name, email or username contains term,
// ignoring case. A blank term returns users unchanged, in the same order.
func Filter(users []User, term string) []User {
	search := strings.ToLower(strings.TrimSpace(term))
	if search == "" {
		return users
	}

	filtered := make([]User, 0, len(users))
	for _, u := range users {
		if matches(u, search) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func matches(u User, search string) bool {
	return strings.Contains(strings.ToLower(u.Name), search) ||
		strings.Contains(strings.ToLower(u.Email), search) ||
		strings.Contains(strings.ToLower(u.Username), search)
}
