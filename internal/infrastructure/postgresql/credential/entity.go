package credential

// Credential holds a user's exchange API key pair.
type Credential struct {
	UserID    string
	APIKey    string
	APISecret string
}
