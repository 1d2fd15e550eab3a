// Package chatbot answers usage questions with an ordered keyword rule
// table. The first matching rule wins.
package chatbot

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// DefaultResponse is returned when no rule matches.
const DefaultResponse = "I can help you analyze your Token Flex usage data. Try asking about current usage, trends, optimization tips, or specific chart information."

// Rule produces a response when it matches the lower-cased message.
type Rule struct {
	Name    string
	Respond func(message string, batch *models.UsageBatch) (string, bool)
}

// Bot evaluates its rules top to bottom.
type Bot struct {
	rules []Rule
}

// New creates a Bot with the built-in rule table.
func New() *Bot {
	return &Bot{rules: defaultRules()}
}

// NewWithRules creates a Bot evaluating rules in order.
func NewWithRules(rules []Rule) *Bot {
	return &Bot{rules: rules}
}

// Respond answers message using batch as the usage context. batch may be nil.
func (b *Bot) Respond(message string, batch *models.UsageBatch) string {
	lower := strings.ToLower(message)
	for _, r := range b.rules {
		if resp, ok := r.Respond(lower, batch); ok {
			return resp
		}
	}
	return DefaultResponse
}

func containsAny(message string, keywords ...string) bool {
	for _, k := range keywords {
		if strings.Contains(message, k) {
			return true
		}
	}
	return false
}

// keywordRule answers with a fixed text when any keyword is present.
func keywordRule(name, response string, keywords ...string) Rule {
	return Rule{
		Name: name,
		Respond: func(message string, _ *models.UsageBatch) (string, bool) {
			return response, containsAny(message, keywords...)
		},
	}
}

var chartNumber = regexp.MustCompile(`chart\s*(\d)`)

func defaultRules() []Rule {
	rules := []Rule{
		{Name: "current usage", Respond: currentUsage},
		{Name: "highest usage", Respond: highestUsage},
		keywordRule("optimization", optimizationTips, "optimization", "reduce costs"),
		keywordRule("trends", trendsText, "trends", "pattern"),
		keywordRule("export", "Currently, you can view the charts and take screenshots. Data export functionality could be added in future updates.", "export"),
		keywordRule("real-time", "The data refreshes when you select different contracts. For real-time monitoring, consider setting up automated reporting.", "real-time"),
		keywordRule("alerts", "Usage alerts and notifications could be configured based on threshold limits for proactive monitoring.", "alerts"),
		keywordRule("history", "Select different contracts to view historical usage patterns and compare consumption across time periods.", "history"),
	}

	for _, kr := range dashboardResponses {
		rules = append(rules, keywordRule(kr.keyword, kr.response, kr.keyword))
	}

	return append(rules,
		Rule{Name: "chart number", Respond: chartHelp},
		keywordRule("my data", "To see your current usage data, please select a contract from the contract list. The charts will update to show your specific usage patterns for that contract.",
			"current", "my data", "this month"),
		keywordRule("login", "Access is granted through the stored APS credentials of the server. Sign in with your Autodesk account to refresh them when they expire.",
			"login", "authenticate"),
		keywordRule("refresh", "To refresh your data, simply select a different contract or submit the same one again. The charts will automatically update with the latest usage information.",
			"refresh", "update"),
	)
}

const optimizationTips = "To optimize your Token Flex costs:\n" +
	"• Monitor usage patterns in the charts\n" +
	"• Identify peak usage times to better plan capacity\n" +
	"• Focus on optimizing high-consumption categories\n" +
	"• Consider batch processing for better efficiency\n" +
	"• Review unused or underutilized services"

const trendsText = "The time-based charts show your usage trends. Look for:\n" +
	"• Peak usage periods during specific times\n" +
	"• Seasonal variations in consumption\n" +
	"• Growth trends in different categories\n" +
	"• Opportunities for workload distribution"

// dashboardResponses is checked in order; earlier keywords shadow later ones.
var dashboardResponses = []struct {
	keyword  string
	response string
}{
	{"token flex", "Token Flex is Autodesk's usage-based pricing model that allows you to pay for what you use across APS services. The charts show your usage patterns and consumption."},
	{"usage", "Your usage data is displayed in the six charts of the dashboard. Each chart represents different aspects of your Token Flex consumption including usage categories, product names, and time-based patterns."},
	{"charts", "The dashboard shows 6 different charts analyzing your Token Flex usage from various perspectives. Each chart helps you understand different aspects of your consumption patterns."},
	{"contract", "Select a contract number from the contract list to view its usage data. Each contract may have different usage patterns and allocations."},
	{"cost", "Token Flex pricing is based on your actual usage. The charts help you analyze consumption patterns to optimize costs and predict future usage."},
	{"api", "This application uses the Autodesk Platform Services (APS) API to fetch and display your Token Flex usage data. The data is retrieved securely using OAuth authentication."},
	{"help", "I can help you with:\n• Understanding Token Flex concepts\n• Interpreting the usage charts\n• Explaining contract data\n• Navigating the dashboard\n• Cost optimization tips\n\nWhat would you like to know more about?"},
	{"chart 1", chartTexts["1"]},
	{"chart 2", chartTexts["2"]},
	{"chart 3", chartTexts["3"]},
	{"chart 4", chartTexts["4"]},
	{"chart 5", chartTexts["5"]},
	{"chart 6", chartTexts["6"]},
	{"hello", "Hello! I'm here to help you understand your Token Flex usage data. What would you like to know?"},
	{"hi", "Hi there! How can I assist you with your Token Flex dashboard today?"},
	{"thanks", "You're welcome! Is there anything else you'd like to know about your Token Flex usage?"},
	{"thank you", "You're welcome! Feel free to ask if you have any other questions about Token Flex."},
}

var chartTexts = map[string]string{
	"1": "Chart 1 shows your usage breakdown by category. This helps identify which services consume the most tokens.",
	"2": "Chart 2 displays usage by product name, showing which specific products are being used most frequently.",
	"3": "Chart 3 presents time-based usage patterns to help you understand consumption trends over time.",
	"4": "Chart 4 shows additional usage analytics to provide comprehensive insights into your Token Flex consumption.",
	"5": "Chart 5 displays comparative usage data across different metrics or time periods.",
	"6": "Chart 6 provides supplementary analytics to complete your usage overview.",
}

func chartHelp(message string, _ *models.UsageBatch) (string, bool) {
	m := chartNumber.FindStringSubmatch(message)
	if m == nil {
		return "", false
	}
	if text, ok := chartTexts[m[1]]; ok {
		return text, true
	}
	return fmt.Sprintf("Chart %s displays specific usage analytics. You can interact with it to get more detailed information about your Token Flex consumption.", m[1]), true
}

func currentUsage(message string, batch *models.UsageBatch) (string, bool) {
	if !containsAny(message, "current usage", "how much") {
		return "", false
	}
	if batch.Len() == 0 {
		return "Please select a contract from the contract list first to see your current usage data.", true
	}

	var total float64
	var categories []string
	seen := make(map[string]bool)

	for _, r := range batch.Results {
		for _, row := range r.Result {
			if v, ok := row.Tokens(); ok {
				total += v
			}
			if c := row.String("usageCategory"); c != "" && !seen[c] {
				seen[c] = true
				categories = append(categories, c)
			}
		}
	}

	top := categories
	if len(top) > 3 {
		top = top[:3]
	}

	return fmt.Sprintf("Based on your current contract data, you have %d usage categories with a total of %s tokens consumed. The main categories are: %s.",
		len(categories), formatTokens(total), strings.Join(top, ", ")), true
}

func highestUsage(message string, batch *models.UsageBatch) (string, bool) {
	if !containsAny(message, "highest", "most used") || batch.Len() == 0 {
		return "", false
	}

	var maxUsage float64
	topCategory := "Unknown"

	for _, r := range batch.Results {
		for _, row := range r.Result {
			v, ok := row.Tokens()
			if !ok || v <= maxUsage {
				continue
			}
			maxUsage = v
			topCategory = row.Label()
			if topCategory == "" {
				topCategory = "Unknown"
			}
		}
	}

	return fmt.Sprintf("Your highest usage category is \"%s\" with %s tokens consumed.", topCategory, formatTokens(maxUsage)), true
}

// formatTokens groups thousands and keeps at most three decimals.
func formatTokens(v float64) string {
	return humanize.Commaf(math.Round(v*1000) / 1000)
}
