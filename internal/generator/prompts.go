package generator

import "strings"

// SessionPrompt renders the session-plan prompt for topic and board style.
func SessionPrompt(topic, style string) string {
	return strings.NewReplacer("{{topic}}", topic, "{{style}}", style).Replace(sessionTemplate)
}

// CodeExamplePrompt renders the refactoring-walkthrough prompt.
func CodeExamplePrompt(topic, language string) string {
	return strings.NewReplacer("{{topic}}", topic, "{{language}}", language).Replace(codeExampleTemplate)
}

const sessionTemplate = `Create a Learning Hour session on "{{topic}}" that gives a team deliberate practice in a technical excellence skill.

Learning Hours are short, hands-on practice sessions. Participants write code; they do not just talk about it. Structure the session with the 4C model:

1. CONNECT (5-10 minutes): surface what participants already know about {{topic}} from their own codebases, in pairs or small groups.
2. CONCEPT (15-20 minutes): introduce {{topic}} with a short live-coding demonstration and a concrete before/after example. Tie it to principles such as SOLID, DRY and YAGNI.
3. CONCRETE (20-30 minutes): pairs or an ensemble practise ONE micro-skill of {{topic}} on a realistic exercise, test first where possible, with clear acceptance criteria.
4. CONCLUSION (5-10 minutes): participants reflect and commit to one way of applying {{topic}} in their work this week.

Keep the tone safe for experimentation and give the facilitating coach clear guidance.

The board uses the "{{style}}" style:
- slide: one section per screen, read left to right while screen sharing
- vertical: sections stacked top to bottom with detailed instructions visible at once
- workshop: extra breakout activities and longer practice time

Allowed section types are text_frame (uses "content"), sticky_notes (uses "items" and "color"), code_examples (uses "language", "beforeCode", "afterCode") and code_block (uses "language", "code").

Return ONLY a JSON object of exactly this shape:
{
  "topic": "{{topic}}",
  "sessionOverview": "2-3 sentences on what participants will practise and why it matters in their daily work",
  "learningObjectives": [
    "REMEMBER: Define the key terms and concepts behind {{topic}}",
    "IDENTIFY: Recognise places in our codebase where {{topic}} applies",
    "DEMONSTRATE: Apply a specific technique for {{topic}} in small steps",
    "EVALUATE: Judge the design improvement gained by addressing {{topic}}"
  ],
  "activities": [
    {
      "title": "Connect: {{topic}} in Our Codebase",
      "duration": "8 minutes",
      "description": "Pairs share real examples of {{topic}} from their current projects",
      "instructions": [
        "Pair with someone from a different team",
        "Each person describes one recent encounter with {{topic}}",
        "Discuss what made it hard and how it slowed delivery",
        "Prepare one insight to share with the group"
      ]
    },
    {
      "title": "Concept: Understanding {{topic}}",
      "duration": "15 minutes",
      "description": "Live coding demonstration of {{topic}} and how to resolve it",
      "instructions": [
        "Watch the facilitator walk through code that shows {{topic}}",
        "Name the smells together",
        "Follow each small refactoring step and the tests that guard it"
      ]
    },
    {
      "title": "Concrete: Refactoring Exercise",
      "duration": "25 minutes",
      "description": "Hands-on practice refactoring code that exhibits {{topic}}",
      "instructions": [
        "Write a characterization test for the starting code",
        "Identify the {{topic}} problem",
        "Refactor in small steps and run the tests after each one",
        "Swap driver and navigator every 5 minutes"
      ]
    },
    {
      "title": "Conclusion: Applying It",
      "duration": "7 minutes",
      "description": "Reflect on the exercise and commit to a concrete next step",
      "instructions": [
        "Share one insight with your pair",
        "Write a commitment: 'This week I will...'",
        "Share commitments in groups of four"
      ]
    }
  ],
  "discussionPrompts": [
    "Where in our codebase would addressing {{topic}} pay off most?",
    "What stops us from fixing {{topic}} when we notice it?",
    "How does {{topic}} affect how quickly and safely we deliver?",
    "Which team habits would keep {{topic}} out of new code?"
  ],
  "keyTakeaways": [
    "Small, safe steps beat big rewrites when addressing {{topic}}",
    "Tests are what make refactoring {{topic}} safe",
    "Regular practice makes {{topic}} easy to spot early"
  ],
  "miroContent": {
    "boardTitle": "Learning Hour: {{topic}}",
    "style": "{{style}}",
    "sections": [
      {
        "title": "Welcome & Session Overview",
        "type": "text_frame",
        "content": "Today's Learning Hour: {{topic}}\n\n[Session overview from above]"
      },
      {
        "title": "Learning Objectives",
        "type": "sticky_notes",
        "color": "light_blue",
        "items": ["[Each learning objective from above on separate sticky]"]
      },
      {
        "title": "CONNECT: Your Experience (8 min)",
        "type": "sticky_notes",
        "color": "light_yellow",
        "items": ["Share a recent encounter with {{topic}}", "What made it challenging?", "Impact on your flow?"]
      },
      {
        "title": "Code Exercise Setup",
        "type": "code_examples",
        "language": "java",
        "beforeCode": "// Starting code with {{topic}}\n// [Realistic example that participants might see in their work]",
        "afterCode": "// One possible refactored solution\n// [Clean, testable code following SOLID principles]"
      },
      {
        "title": "Discussion Questions",
        "type": "sticky_notes",
        "color": "light_orange",
        "items": ["[Each discussion prompt from above]"]
      },
      {
        "title": "Key Takeaways",
        "type": "sticky_notes",
        "color": "light_purple",
        "items": ["[Each takeaway from above]"]
      },
      {
        "title": "Facilitator Notes",
        "type": "text_frame",
        "content": "Practice over perfection. Circulate during pair work. Time-box strictly."
      }
    ]
  }
}

Replace every bracketed placeholder with real content for {{topic}}.`

const codeExampleTemplate = `Create a production-like code example in {{language}} for a Learning Hour on "{{topic}}".

The example is used in the Concrete phase, where pairs practise refactoring by hand. It must feel like code from a real product and show several small, safe steps rather than a single before/after jump.

Requirements:
1. A realistic scenario developers meet in production code.
2. Two to five refactoring steps, each small enough to do in a few minutes.
3. The specific code smells addressed at each step.
4. Test code alongside the production code.
5. A facilitation tip for the coach at every step.
6. Idiomatic {{language}} throughout.

Return ONLY a JSON object, with no markdown, of exactly this shape:
{
  "topic": "{{topic}}",
  "language": "{{language}}",
  "context": "One sentence describing the scenario, e.g. an e-commerce checkout calculating discounts and taxes",
  "problemStatement": "What makes this code a good example of {{topic}}",
  "learningHourConnection": "How practising on this example transfers to everyday work",
  "refactoringSteps": [
    {
      "stepNumber": 1,
      "description": "Extract Method: isolate the discount calculation",
      "code": "// production code after this step",
      "testCode": "// test that pins this step's behaviour",
      "codeSmells": ["Long Method", "Feature Envy"],
      "improvements": ["Single Responsibility", "Easier to test"],
      "facilitationTip": "Ask pairs what makes this method easier to test now"
    },
    {
      "stepNumber": 2,
      "description": "Replace Conditional with Polymorphism: one strategy per discount type",
      "code": "// production code after this step",
      "testCode": "// tests for the new abstraction",
      "codeSmells": ["Switch Statements", "Duplicated logic"],
      "improvements": ["Open/Closed Principle", "Easier to extend"],
      "facilitationTip": "Ask which new discount types could now be added without editing existing code"
    }
  ],
  "additionalExercises": [
    "Add a loyalty discount using the refactored structure",
    "Extract validation into its own type"
  ],
  "facilitationNotes": {
    "timeAllocation": "5 min code review, 15 min pair refactoring, 5 min group discussion",
    "commonMistakes": ["Refactoring everything at once", "Not running tests between steps"],
    "discussionPoints": ["Which step improved clarity the most?", "Where does this pattern appear in our code?"],
    "pairProgrammingTips": ["Switch roles every 5 minutes", "Think out loud", "Celebrate every green test"]
  }
}

Every step must compile and pass its tests on its own.`
