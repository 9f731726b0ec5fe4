package generator

import (
	"fmt"
	"strings"
)

const (
	overviewPlaceholder = "[Session overview from above]"
	topicPlaceholder    = "${topic}"
	beforePlaceholder   = "[Realistic example"
	afterPlaceholder    = "[Clean, testable code"
)

var placeholderItemMarkers = []string{"[Each", "[specific"}

// PostProcess replaces template placeholders the model copied verbatim from
// the prompt skeleton. content is not modified; a processed copy is returned.
func PostProcess(content SessionContent) SessionContent {
	out := content
	out.MiroContent.Sections = make([]Section, len(content.MiroContent.Sections))
	for i, section := range content.MiroContent.Sections {
		out.MiroContent.Sections[i] = processSection(section, content)
	}
	return out
}

func processSection(section Section, content SessionContent) Section {
	switch section.Type {
	case SectionTextFrame:
		section.Content = replacePlaceholders(section.Content, content)
	case SectionStickyNotes:
		items := make([]string, 0, len(section.Items))
		for _, item := range section.Items {
			if isPlaceholderItem(item) {
				continue
			}
			items = append(items, replacePlaceholders(item, content))
		}
		if len(items) == 0 {
			items = defaultItems(section.Title, content)
		}
		section.Items = items
	case SectionCodeExamples:
		if strings.Contains(section.BeforeCode, beforePlaceholder) {
			section.BeforeCode = defaultBeforeCode(content.Topic)
		}
		if strings.Contains(section.AfterCode, afterPlaceholder) {
			section.AfterCode = defaultAfterCode(content.Topic)
		}
	}
	return section
}

func replacePlaceholders(text string, content SessionContent) string {
	if content.SessionOverview != "" {
		text = strings.Replace(text, overviewPlaceholder, content.SessionOverview, 1)
	}
	if content.Topic != "" {
		text = strings.ReplaceAll(text, topicPlaceholder, content.Topic)
	}
	return text
}

func isPlaceholderItem(item string) bool {
	for _, marker := range placeholderItemMarkers {
		if strings.Contains(item, marker) {
			return true
		}
	}
	return false
}

// defaultItems prefers the session's own lists for the well-known sticky
// sections and falls back to generic prompts.
func defaultItems(title string, content SessionContent) []string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "objective"):
		if len(content.LearningObjectives) > 0 {
			return append([]string(nil), content.LearningObjectives...)
		}
		return []string{
			"Understand the key concepts",
			"Practice applying the technique",
			"Gain confidence through hands-on exercise",
		}
	case strings.Contains(lower, "discussion"):
		if len(content.DiscussionPrompts) > 0 {
			return append([]string(nil), content.DiscussionPrompts...)
		}
		return []string{
			"What was most challenging?",
			"How might you apply this in your work?",
			"What questions do you still have?",
		}
	case strings.Contains(lower, "takeaway"):
		if len(content.KeyTakeaways) > 0 {
			return append([]string(nil), content.KeyTakeaways...)
		}
		return []string{
			"Small, incremental changes are safer",
			"Tests provide confidence when refactoring",
			"Practice makes these techniques second nature",
		}
	default:
		return []string{"Item 1", "Item 2", "Item 3"}
	}
}

func defaultBeforeCode(topic string) string {
	if topic == "" {
		topic = "the concept"
	}
	return fmt.Sprintf(`// Example code demonstrating %s
public class Example {
    // This method shows common issues
    public void process(String data) {
        // Implementation here
    }
}`, topic)
}

func defaultAfterCode(topic string) string {
	if topic == "" {
		topic = "the issue"
	}
	return fmt.Sprintf(`// Refactored code addressing %s
public class Example {
    // Improved implementation
    public void process(String data) {
        // Cleaner implementation
    }
}`, topic)
}
