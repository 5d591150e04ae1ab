package dialogue

import (
	"fmt"
	"strings"
	"time"

	"github.com/labease/labease-platform/internal/catalog"
	"github.com/labease/labease-platform/internal/retrieval"
)

// appointmentFormat is how confirmed appointment times are shown.
const appointmentFormat = "Monday, 2 January 2006 at 3:04 PM"

func priceLabel(t catalog.Test) string {
	if t.HasPrice() {
		return "Rs. " + t.Price.StringFixed(2)
	}
	return "Contact lab for rates"
}

func greetingResponse() string {
	return `**Welcome to LabEase!**

I'm your healthcare assistant. Here's how I can help you:

- **Search Tests** - Ask me about any medical test
- **Check Prices** - Find affordable tests near you
- **Find Labs** - Locate labs in your area
- **Get Recommendations** - Describe your symptoms and I'll suggest tests
- **Book Tests** - I can book a test for you right here in chat

**What would you like to do today?**`
}

func helpResponse() string {
	return `**How I Can Help You**

- **Search & find tests**: ask about any test by name, e.g. "What is Complete Blood Count?"
- **Find nearby labs**: e.g. "Labs in Kathmandu" or "Where can I do a thyroid test?"
- **Pricing**: e.g. "How much does a lipid panel cost?"
- **Recommendations**: describe your symptoms and I'll suggest relevant tests
- **Booking**: say "Book [test name]" and I'll walk you through it

How may I assist you today?`
}

func bookingPromptMessage() string {
	return `**Smart Test Booking**

Great! I'll help you book a test. Let me understand your needs:

**Step 1: Your Health**
- What symptoms or concerns do you have?

**Step 2: Your Information**
- Your full name
- Your email
- Your phone number (optional)

**Step 3: Preferences** (optional)
- Preferred date/time for the test

**Example:**
*I'm feeling tired and weak. My name is John Smith, john@gmail.com, 9876543210, tomorrow morning would work best.*

Ready? Just share your health concern!`
}

func testSelectedMessage(testName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ **Test Selected: %s**\n\n", testName)
	fmt.Fprintf(&b, "Perfect! I'll book **%s** for you.\n\n", testName)
	b.WriteString("Just provide your details:\n")
	b.WriteString("- Your full name\n")
	b.WriteString("- Your email address\n")
	b.WriteString("- Phone number (optional)\n\n")
	b.WriteString("**Example:** *My name is John Smith, john@gmail.com, 9876543210*")
	return b.String()
}

func detailsConfirmedMessage(name, testName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Great! Details Confirmed, %s.\n\n", name)
	fmt.Fprintf(&b, "Now, when would you like your **%s** appointment?\n\n", testName)
	b.WriteString("You can say:\n")
	b.WriteString("- \"Today at 2:00 PM\"\n")
	b.WriteString("- \"Tomorrow morning\"\n")
	b.WriteString("- \"14 Feb at 3:30 PM\"")
	return b.String()
}

func detailsRepromptMessage(testName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I still need your contact details to book **%s**.\n\n", testName)
	b.WriteString("Please include at least your full name and email, for example:\n")
	b.WriteString("*My name is John Smith, john@gmail.com*")
	return b.String()
}

func bookingConfirmedMessage(code, testName, labName, price string, at time.Time) string {
	var b strings.Builder
	b.WriteString("🎉 **Booking Confirmed!**\n\n")
	fmt.Fprintf(&b, "**Booking ID:** %s\n", code)
	fmt.Fprintf(&b, "**Test:** %s\n", testName)
	fmt.Fprintf(&b, "**Lab:** %s\n", labName)
	fmt.Fprintf(&b, "**Price:** %s\n", price)
	fmt.Fprintf(&b, "**Appointment:** %s\n\n", at.Format(appointmentFormat))
	b.WriteString("A confirmation email is on its way. ")
	b.WriteString("Keep your booking ID handy to check, change or cancel your appointment.")
	return b.String()
}

func sessionExpiredMessage() string {
	return "Your booking session expired, let's start over. " +
		"Tell me which test you'd like to book, e.g. \"Book Complete Blood Count\"."
}

func cancelledFlowMessage() string {
	return "No problem, I've cancelled this booking flow. " +
		"Whenever you're ready, say \"Book [test name]\" to start again."
}

func noLabMessage(testName string) string {
	return fmt.Sprintf("Unfortunately no partner lab currently offers **%s**, so I've reset your booking. "+
		"Try another test or ask me what's available.", testName)
}

func bookingSuggestions() []string {
	return []string{
		"Available blood tests",
		"Cheapest tests available",
		"Complete booking process",
	}
}

func timeSuggestions() []string {
	return []string{
		"Today at 2:00 PM",
		"Tomorrow morning",
		"Tomorrow evening",
	}
}

func defaultSuggestions(tests []catalog.Test) []string {
	testSuggestion := "What tests do you have?"
	if len(tests) > 0 {
		testSuggestion = fmt.Sprintf("What is the price of %s?", tests[0].Name)
	}
	return []string{"Book a test", testSuggestion, "Find labs near me"}
}

func priceSuggestions(tests []catalog.Test) []string {
	var out []string
	for _, t := range tests {
		out = append(out, fmt.Sprintf("What is the price of %s?", t.Name))
		if len(out) == 2 {
			break
		}
	}
	out = append(out, "Show me cheapest tests")
	return out[:min(3, len(out))]
}

func testSuggestions(tests []catalog.Test) []string {
	var out []string
	for _, t := range tests {
		out = append(out, fmt.Sprintf("Book %s", t.Name))
		if len(out) == 2 {
			break
		}
	}
	out = append(out, "Find labs near me")
	return out[:min(3, len(out))]
}

func testQueryResponse(infos []retrieval.TestInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d test(s) matching your query:\n\n", len(infos))
	for i, info := range infos {
		if i == 6 {
			fmt.Fprintf(&b, "*Showing 6 of %d results. Search for more!*\n\n", len(infos))
			break
		}
		fmt.Fprintf(&b, "**%s**\n", info.Name)
		if info.Description != "No description available" {
			fmt.Fprintf(&b, "   _%s_\n", info.Description)
		}
		fmt.Fprintf(&b, "   **Price:** %s\n", rsOrContact(info.Price))
		if len(info.Labs) > 0 {
			fmt.Fprintf(&b, "   **Available at:** %s\n", strings.Join(info.Labs, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("**What's Next?**\n")
	b.WriteString("- Interested? Say 'Book [test name]'\n")
	b.WriteString("- Need another test? Keep searching!")
	return b.String()
}

func noTestsResponse(popular []catalog.Test) string {
	var b strings.Builder
	b.WriteString("**Medical Tests Available**\n\n")
	if len(popular) > 0 {
		b.WriteString("**Popular Tests:**\n\n")
		for _, t := range popular {
			fmt.Fprintf(&b, "- **%s**", t.Name)
			if t.HasPrice() {
				fmt.Fprintf(&b, " - **%s**", priceLabel(t))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString("- Ask about test categories (blood, cardiac, hormones)\n")
	b.WriteString("- Describe your symptoms and I'll recommend tests\n")
	b.WriteString("- Book any test - just ask!")
	return b.String()
}

func priceQueryResponse(tests []catalog.Test) string {
	var b strings.Builder
	b.WriteString("**Test Pricing Guide**\n\n")
	for i, t := range tests {
		if i == 6 {
			fmt.Fprintf(&b, "*Showing 6 of %d tests. Search for more!*\n\n", len(tests))
			break
		}
		fmt.Fprintf(&b, "**%s**\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "   _%s_\n", t.Description)
		}
		fmt.Fprintf(&b, "   **%s**\n\n", priceLabel(t))
	}
	b.WriteString("**Important Info:**\n")
	b.WriteString("- Prices are approximate reference rates\n")
	b.WriteString("- Actual price may vary by lab & location\n\n")
	b.WriteString("**Next Step?** Say 'Book [test name]' to get started!")
	return b.String()
}

func noPricesResponse() string {
	return `**Test Pricing**

I'm here to help you with test pricing!

- **Ask about specific tests**, e.g. 'How much is Complete Blood Count?'
- **Find test categories**, e.g. 'Blood test prices' or 'Thyroid tests'
- **Book directly from chat**, e.g. 'Book glucose test'

Pricing varies by lab; contact the lab directly for exact rates.`
}

func symptomQueryResponse(infos []retrieval.TestInfo) string {
	var b strings.Builder
	b.WriteString("**Suggested Tests Based on Your Symptoms**\n\n")
	for i, info := range infos {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "**%s**\n", info.Name)
		if info.Description != "No description available" {
			fmt.Fprintf(&b, "   _%s_\n", info.Description)
		}
		fmt.Fprintf(&b, "   **%s**\n", rsOrContact(info.Price))
		if len(info.Labs) > 0 {
			fmt.Fprintf(&b, "   **Available at:** %s\n", strings.Join(info.Labs, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("**Important Reminder:**\n")
	b.WriteString("These suggestions are general guidance only. Consult a doctor for an accurate diagnosis.\n\n")
	b.WriteString("**Ready to Book?** Say 'Book [test name]' and I'll get you started!")
	return b.String()
}

func noSymptomMatchResponse() string {
	return `**Symptom-Based Recommendations**

Thanks for sharing! For best results:

- Describe your symptoms in more detail and I'll suggest relevant tests
- Always consult a healthcare provider for personalized advice

I can also help with test information, lab locations, pricing and booking.`
}

func labQueryResponse(labs []retrieval.LabInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found **%d laboratory/laboratories** matching your search:\n\n", len(labs))
	for i, lab := range labs {
		if i == 5 {
			fmt.Fprintf(&b, "*Showing 5 of %d labs.*\n\n", len(labs))
			break
		}
		fmt.Fprintf(&b, "**%s**\n", lab.Name)
		fmt.Fprintf(&b, "   **Location:** %s, %s\n", lab.City, lab.State)
		if lab.Phone != "" {
			fmt.Fprintf(&b, "   **Phone:** %s\n", lab.Phone)
		}
		if lab.Email != "" {
			fmt.Fprintf(&b, "   **Email:** %s\n", lab.Email)
		}
		b.WriteString("\n")
	}
	b.WriteString("**To book a test:** say 'Book [test name]' or contact the lab directly.")
	return b.String()
}

func noLabsResponse() string {
	return `We partner with quality laboratories across the region.

**How to find labs:**
- Ask me about labs in a specific area, e.g. 'Find labs in Kathmandu'
- Search for a test and I'll show the labs offering it

What location or test are you looking for?`
}

func unknownTestResponse(alternatives []catalog.Test) string {
	var b strings.Builder
	b.WriteString("I couldn't find that test in our catalog. Here are some you can book:\n\n")
	for i, t := range alternatives {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s** (%s)\n", t.Name, priceLabel(t))
	}
	b.WriteString("\nSay 'Book [test name]' to choose, or describe your symptoms and I'll recommend one.")
	return b.String()
}

func pickTestResponse(tests []catalog.Test) string {
	var b strings.Builder
	b.WriteString("Based on your symptoms, a few tests could fit. Which one would you like to book?\n\n")
	for i, t := range tests {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- **%s** (%s)\n", t.Name, priceLabel(t))
	}
	b.WriteString("\nSay 'Book [test name]' to choose.")
	return b.String()
}

func fallbackResponse(tests []catalog.Test, labs []retrieval.LabInfo) string {
	if len(tests) > 0 {
		var b strings.Builder
		b.WriteString("**Matching Tests Found**\n\n")
		for _, t := range tests {
			fmt.Fprintf(&b, "**%s** - %s\n", t.Name, priceLabel(t))
			if t.Description != "" {
				fmt.Fprintf(&b, "   _%s_\n", t.Description)
			}
		}
		b.WriteString("\n**What's Next?**\n")
		b.WriteString("- Want to book? Say 'Book [test name]'\n")
		b.WriteString("- Find labs? I can show you nearby labs")
		return b.String()
	}
	if len(labs) > 0 {
		return labQueryResponse(labs)
	}
	return `**Didn't quite catch that**

I'm here to help! You can:

- **Search tests**, e.g. "What is Complete Blood Count?"
- **Find labs**, e.g. "Labs in Kathmandu"
- **Check prices**, e.g. "How much is a diabetes test?"
- **Get recommendations**, e.g. "I have fever and cough"
- **Book a test**, e.g. "Book blood test"

**What would you like to do?**`
}

func rsOrContact(price string) string {
	if price == "" || price == "Price not available" {
		return "Contact lab for rates"
	}
	return "Rs. " + price
}
