package providers

import (
	"fmt"
	"strings"
	"time"
)

func FormatInstructions(instr []string) string {
	var b strings.Builder
	b.WriteString("[Instructions]\n")
	for _, rule := range instr {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

// ResponseID builds an id for providers whose API does not return one.
func ResponseID(provider string) string {
	return fmt.Sprintf("%s-%d", provider, time.Now().UnixNano())
}
