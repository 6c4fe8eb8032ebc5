package history

import "strings"

// NormalizePhoneNumber strips visual separators from a dialable number.
// A leading + is kept; suffixes such as /TYPE=PLMN pass through.
func NormalizePhoneNumber(number string) string {
	number = strings.TrimSpace(number)
	var b strings.Builder
	for i, r := range number {
		switch r {
		case '+':
			if i == 0 {
				b.WriteRune(r)
			}
		case ' ', '-', '.', '(', ')':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func NormalizePhoneNumbers(numbers []string) []string {
	if numbers == nil {
		return nil
	}
	out := make([]string, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, NormalizePhoneNumber(n))
	}
	return out
}
