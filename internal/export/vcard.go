package export

import (
	"fmt"
	"strings"

	"github.com/gemeindetools/planweb/internal/churchtools"
)

// ContactsVCF serializes persons into one vCard 3.0 file with name and
// phone numbers, the format phone systems import directly. Empty phone
// fields are omitted.
func ContactsVCF(persons []churchtools.Person) string {
	var sb strings.Builder
	for _, person := range persons {
		writeContactVCard(&sb, person)
	}
	return sb.String()
}

func writeContactVCard(sb *strings.Builder, person churchtools.Person) {
	sb.WriteString("BEGIN:VCARD\r\n")
	sb.WriteString("VERSION:3.0\r\n")
	fmt.Fprintf(sb, "UID:planweb-person-%d\r\n", person.ID)
	fmt.Fprintf(sb, "FN:%s\r\n", escapeVCardValue(strings.TrimSpace(person.FirstName+" "+person.LastName)))

	// N: Last;First;Middle;Prefix;Suffix
	fmt.Fprintf(sb, "N:%s;%s;;;\r\n", escapeVCardValue(person.LastName), escapeVCardValue(person.FirstName))

	if person.PhonePrivate != "" {
		fmt.Fprintf(sb, "TEL;TYPE=HOME:%s\r\n", person.PhonePrivate)
	}
	if person.PhoneWork != "" {
		fmt.Fprintf(sb, "TEL;TYPE=WORK:%s\r\n", person.PhoneWork)
	}
	if person.Mobile != "" {
		fmt.Fprintf(sb, "TEL;TYPE=CELL:%s\r\n", person.Mobile)
	}

	sb.WriteString("END:VCARD\r\n")
}

// escapeVCardValue escapes special characters for vCard format.
func escapeVCardValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
