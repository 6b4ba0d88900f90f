package normalize

import "strings"

// mailDomain is the signup domain the mobile client hides in lists.
const mailDomain = "@mail.com"

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization currently trims surrounding
// whitespace and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// DisplayName returns the name shown in the conversation list and the
// user picker: the email with the default mail domain removed.
func DisplayName(email string) string {
	return strings.ReplaceAll(email, mailDomain, "")
}

// BlobPath cleans a storage path: surrounding slashes and whitespace are
// dropped and repeated slashes collapsed.
func BlobPath(p string) string {
	parts := strings.Split(strings.TrimSpace(p), "/")
	kept := parts[:0]
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}
