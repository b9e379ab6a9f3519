package render

import (
	"fmt"
	"strings"

	"github.com/kiribu/budget-buddy/internal/statement"
)

const Welcome = "Welcome to BudgetBuddy\\! 💰\n" +
	"Your personal assistant for tracking expenses and income\n" +
	"\n" +
	"🔹 Easily monitor your finances:\n" +
	"  Track your spending, manage your income, and gain insights into your financial\n" +
	"\n" +
	"🔹 Simple and intuitive:\n" +
	"  Upload bank statements and BudgetBuddy will do the rest\n" +
	"\n" +
	"🔹 Get started:\n" +
	"  Just type /help to see all available commands and learn how to use the bot\n" +
	"\n" +
	"Let’s take control of your budget together\\! 🚀"

func Invited(firstName, lastName string) string {
	name := strings.TrimSpace(firstName + " " + lastName)
	return fmt.Sprintf("Also you have been invited by _%s_ and now you can see the shared budget", escape(name))
}

func Help(banks []statement.Bank) string {
	return "BudgetBuddy Help Menu 📖\n" +
		"\n" +
		"🔹 /help \\- see the current message with command hints\n" +
		"\n" +
		"🔹 /upload \\- Upload your bank statement to start tracking your expenses and incomes\\. " +
		SupportedBanks(banks) + "\n" +
		"\n" +
		"🔹 /report \\- Get a report of your income and expenses for a period\n" +
		"\n" +
		"🔹 /analytics \\- Compare this month with the previous one\n" +
		"\n" +
		"🔹 /create\\_invitation \\- Invite another person to manage a joint budget"
}

func SupportedBanks(banks []statement.Bank) string {
	if len(banks) == 0 {
		return "We do not support any banks yet\\."
	}
	names := make([]string, 0, len(banks))
	for _, bank := range banks {
		names = append(names, escape(bank.Name))
	}
	return "We support " + join(names) + "\\."
}

func SupportedFormats(bank statement.Bank) string {
	if len(bank.Extensions) == 0 {
		return "We do not currently support any bank statement format from " + escape(bank.Name)
	}
	formats := make([]string, 0, len(bank.Extensions))
	for _, ext := range bank.Extensions {
		formats = append(formats, "_"+escape(ext)+"_")
	}
	if len(formats) == 1 {
		return "We support format " + formats[0]
	}
	return "We support formats " + join(formats)
}

// join lists items as "a, b and c".
func join(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
