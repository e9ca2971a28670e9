// Package ui provides colored console output helpers.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

const headerWidth = 60

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	stepColor    = color.New(color.FgBlue, color.Bold)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgWhite)
	warningColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)

	blue   = color.New(color.FgBlue).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

// center left-pads text so it sits centered in the given width.
// Text wider than the width is returned unchanged.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}

// Header prints a banner with the text centered between rules.
func Header(text string) {
	line := strings.Repeat("=", headerWidth)
	headerColor.Println(line)
	headerColor.Println(center(text, headerWidth))
	headerColor.Println(line)
}

// Step prints a numbered progress line, e.g. "[2/5] Parsing files".
func Step(current, total int, text string) {
	stepColor.Printf("[%d/%d] ", current, total)
	fmt.Println(text)
}

// Success prints a green checkmark line.
func Success(format string, a ...interface{}) {
	successColor.Printf("✓ "+format+"\n", a...)
}

// Info prints a plain informational line.
func Info(format string, a ...interface{}) {
	infoColor.Printf(format+"\n", a...)
}

// Warning prints a yellow warning line.
func Warning(format string, a ...interface{}) {
	warningColor.Printf("⚠ "+format+"\n", a...)
}

// Error prints a red error line.
func Error(format string, a ...interface{}) {
	errorColor.Printf("✗ "+format+"\n", a...)
}

// BlueText returns the text colored blue for inline use.
func BlueText(text string) string {
	return blue(text)
}

// YellowText returns the text colored yellow for inline use.
func YellowText(text string) string {
	return yellow(text)
}
