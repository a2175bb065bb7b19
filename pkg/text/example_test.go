package text_test

import (
	"context"
	"fmt"

	"github.com/walteh/patchrc/pkg/text"
)

func ExampleLiteralReplacer_ReplaceText() {
	replacer := text.NewLiteralReplacer()

	rules := []text.Rule{
		{Search: `\n}`, Replace: "\n}"},
		{Search: "TODO", Replace: "DONE", Optional: true},
	}

	result, err := replacer.ReplaceText(context.Background(), `if (ok) {\n}`, rules)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Modified: %q\n", result.ModifiedContent)
	fmt.Printf("Changes: %d\n", result.ReplacementCount)
	fmt.Printf("Skipped rule 1: %v\n", result.Rules[1].Skipped)

	// Output:
	// Modified: "if (ok) {\n}"
	// Changes: 1
	// Skipped rule 1: true
}

func ExampleLiteralReplacer_ReplaceText_precondition() {
	replacer := text.NewLiteralReplacer()

	_, err := replacer.ReplaceText(context.Background(), "already fixed", []text.Rule{
		{Search: `\\n`, Replace: "\n"},
	})
	fmt.Println(err)

	// Output:
	// precondition failed: replacement 0: search text "\\\\n" not found
}
