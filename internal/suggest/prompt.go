package suggest

import (
	"fmt"
	"strings"
)

func buildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString("You categorize personal finance transactions.\n\n")
	b.WriteString("Transaction:\n")
	fmt.Fprintf(&b, "- description: %q\n", req.Description)
	fmt.Fprintf(&b, "- amount: %s (negative is money out)\n", req.Amount.StringFixed(2))
	if req.Details != nil && *req.Details != "" {
		fmt.Fprintf(&b, "- details: %q\n", *req.Details)
	}

	if len(req.ExistingCategories) > 0 {
		b.WriteString("\nChoose from these existing categories when one fits:\n")
		for _, name := range req.ExistingCategories {
			fmt.Fprintf(&b, "- %s\n", name)
		}
		b.WriteString("You may propose a new category name only if none of them fits.\n")
	}

	b.WriteString("\nRespond with STRICT JSON only, no Markdown, in this shape:\n")
	b.WriteString(`{"suggestions":[{"category":"<name>","confidence":<0..1>,"reasoning":"<one sentence>"}]}`)
	b.WriteString("\nReturn at most 3 suggestions ordered by confidence.\n")

	return b.String()
}
