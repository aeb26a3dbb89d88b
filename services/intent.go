package services

import (
	"fmt"
	"regexp"
	"strings"
)

// Casual-conversation categories.
const (
	CasualGreeting  = "greeting"
	CasualHowAreYou = "how_are_you"
	CasualWhatsUp   = "whats_up"
	CasualMeet      = "meet"
	CasualThanks    = "thanks"
	CasualFarewell  = "farewell"
)

type casualRule struct {
	pattern  *regexp.Regexp
	category string
}

// casualRules is an ordered, reviewable policy table of anchored patterns for
// greetings, farewells, gratitude and small talk. These are approximations;
// tune the table, not the router.
var casualRules = []casualRule{
	{regexp.MustCompile(`(?i)^(hi|hello|hey|greetings?|good\s+(morning|afternoon|evening)|howdy)[\s.,!?]*$`), CasualGreeting},
	{regexp.MustCompile(`(?i)^how\s+are\s+you[\s.,!?]*$`), CasualHowAreYou},
	{regexp.MustCompile(`(?i)^what'?s\s+up[\s.,!?]*$`), CasualWhatsUp},
	{regexp.MustCompile(`(?i)^nice\s+to\s+meet\s+you[\s.,!?]*$`), CasualMeet},
	{regexp.MustCompile(`(?i)^(thank\s+you|thanks)[\s.,!?]*$`), CasualThanks},
	{regexp.MustCompile(`(?i)^(bye|goodbye|see\s+you)[\s.,!?]*$`), CasualFarewell},
}

// policyPatterns flags questions that sound like they target organizational
// policies or procedures. Used only after retrieval came up empty, to decide
// between the fixed guidance message and open generation. The boundary is
// heuristic and may misclassify; it is a tunable table, not hardwired logic.
var policyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what\s+(is|are|does|do|can|should|will|would|could|might)\s+.*(policy|procedure|process|guideline|protocol|requirement|standard|rule|regulation|form|document)`),
	regexp.MustCompile(`(?i)how\s+(do|can|should|to)\s+.*(apply|submit|complete|fill|process|handle|manage|report)`),
	regexp.MustCompile(`(?i)where\s+(is|are|can|do|should)\s+.*(find|get|obtain|access|locate|submit)`),
	regexp.MustCompile(`(?i)when\s+(is|are|should|do|can|will)\s+.*(due|required|needed|submitted|processed)`),
	regexp.MustCompile(`(?i)who\s+(is|are|can|should|do|will)\s+.*(responsible|contact|handle|process|approve)`),
	regexp.MustCompile(`(?i)\b(deadline|due date|timeline|schedule|steps|requirements|eligibility|criteria|qualification)\b`),
}

// NoDocumentsMessage is returned verbatim when a policy-like question finds
// no matching documents; no generation call is made.
const NoDocumentsMessage = "I apologize, but I couldn't find specific information about your question in the available documents. This seems like something that might be covered in your organizational policies or procedures. You might want to:\n\n" +
	"• Check if you have the relevant documents uploaded\n" +
	"• Contact your supervisor or HR department\n" +
	"• Refer to your organization's official policy documents\n" +
	"• Consider switching to General Mode using the toggle above if you want a general knowledge answer\n\n" +
	"Is there anything else I can help you with, or would you like to upload additional documents?"

// IntentRouter classifies an incoming question and supplies the canned
// responses for the casual path. It is stateless per request.
type IntentRouter struct{}

func NewIntentRouter() *IntentRouter {
	return &IntentRouter{}
}

// ClassifyCasual reports whether the question is casual conversation and, if
// so, which category matched.
func (r *IntentRouter) ClassifyCasual(question string) (string, bool) {
	trimmed := strings.TrimSpace(question)
	for _, rule := range casualRules {
		if rule.pattern.MatchString(trimmed) {
			return rule.category, true
		}
	}
	return "", false
}

// LooksLikePolicyQuestion reports whether a question with no retrieval hits
// still reads like an institutional/policy query.
func (r *IntentRouter) LooksLikePolicyQuestion(question string) bool {
	for _, pattern := range policyPatterns {
		if pattern.MatchString(question) {
			return true
		}
	}
	return false
}

// CannedResponse returns the fixed reply for a casual category. The greeting
// is personalized with the user's first name when known.
func (r *IntentRouter) CannedResponse(category, firstName string) string {
	if firstName == "" {
		firstName = "there"
	}

	switch category {
	case CasualGreeting:
		return fmt.Sprintf("Hello %s! I'm your assistant. I can help you with questions about your uploaded documents or have a general conversation. How can I assist you today?", firstName)
	case CasualHowAreYou:
		return "I'm doing well, thank you for asking! I'm here and ready to help you with any questions you might have about your documents or anything else. What can I help you with?"
	case CasualWhatsUp:
		return "Not much, just here waiting to help you! Feel free to ask me anything about your documents or start a conversation about any topic you're interested in."
	case CasualThanks:
		return "You're very welcome! I'm always happy to help. Is there anything else you'd like to know or discuss?"
	case CasualFarewell:
		return "Goodbye! It was great chatting with you. Feel free to come back anytime if you need help with your documents or have any questions!"
	default:
		return "Nice to meet you too! I'm here to help with any questions about your documents or to have a friendly conversation. What would you like to talk about?"
	}
}
