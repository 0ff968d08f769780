package crawl

import "strings"

// blockSignatures are phrases a search engine serves instead of results when
// it suspects automated traffic.
var blockSignatures = []string{
	"detected unusual traffic",
	"unusual traffic from your computer network",
	"our systems have detected unusual traffic",
	"/sorry/index",
	"to continue, please type the characters",
	"verify you are a human",
	"are you a robot",
	"captcha",
	"recaptcha",
	"hcaptcha",
	"enable javascript and cookies to continue",
}

// IsBlockPage reports whether the page markup looks like an anti-bot
// interstitial rather than a result page.
func IsBlockPage(html string) bool {
	lower := strings.ToLower(html)
	for _, sig := range blockSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
