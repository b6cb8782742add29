package agent

import (
	"fmt"
	"strings"

	"github.com/deeporg/deeporg/pkg/organizer"
	"github.com/deeporg/deeporg/pkg/tools"
)

// organizeInstruction is the fixed opening request. The run takes no
// free-form user input; everything the model needs is here and in the
// system prompt.
const organizeInstruction = "Organize the files in the target directory. " +
	"Look at what is there, create sensible category folders, and move every file " +
	"into the folder that fits it best. When everything is in place, summarize what you did."

// BuildSystemPrompt renders the system prompt for one run against one
// operations binding.
func BuildSystemPrompt(ops *organizer.FileOps, registry *tools.ToolRegistry) string {
	var b strings.Builder

	b.WriteString("You are a helpful assistant for me organizing my files.\n\n")
	fmt.Fprintf(&b, "Target directory: %s\n", ops.Root())

	b.WriteString("\nRules:\n")
	b.WriteString("- Use only the tools provided. Refer to files and folders by bare name, never by path.\n")
	b.WriteString("- Only direct children of the target directory are reachable.\n")
	b.WriteString("- Create a folder before moving files into it.\n")
	b.WriteString("- Read a file only when its name is not enough to categorize it.\n")
	fmt.Fprintf(&b, "- These names are protected and must be left alone: %s.\n",
		strings.Join(ops.Exclusions().Names(), ", "))

	if ops.DryRun() {
		b.WriteString("\nThis is a dry run: tools that would change the directory simulate the change " +
			"and report what would happen. Proceed exactly as if the changes were real.\n")
	}

	b.WriteString("\nAvailable tools:\n")
	b.WriteString(registry.Summary())

	return b.String()
}
