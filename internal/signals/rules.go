package signals

// nicheRule scores a niche by the fraction of its keywords found in the
// creator corpus. Order matters only for reporting; selection is by ratio.
type nicheRule struct {
	Niche    string
	Keywords []string
}

// Scanned in order; the rule with the highest keyword-hit ratio wins. Ties
// and zero-hit corpora fall back to the creator-monetization defaults.
var nicheRules = []nicheRule{
	{"fitness", []string{"gym", "workout", "fitness", "training", "strength", "muscle", "macros"}},
	{"finance", []string{"invest", "trading", "stocks", "wealth", "budget", "crypto", "portfolio"}},
	{"beauty", []string{"makeup", "skincare", "beauty", "lashes", "cosmetic", "glow"}},
	{"ecommerce", []string{"shopify", "dropship", "ecommerce", "e-commerce", "amazon fba", "online store"}},
	{"ai productivity", []string{"chatgpt", "ai tool", "automation", "productivity", "notion", "prompt"}},
	{"real estate", []string{"real estate", "realtor", "property", "airbnb", "rental", "housing market"}},
	{"business coaching", []string{"business coach", "entrepreneur", "scale your", "agency", "consulting", "high ticket"}},
	{"wellness", []string{"meditation", "mindfulness", "yoga", "wellness", "self care", "breathwork"}},
	{"creator monetization", []string{"creator", "monetize", "audience", "content", "digital product", "brand deal"}},
}

const fallbackNiche = "creator monetization"

// labelRule maps corpus keywords to one output label.
type labelRule struct {
	Label    string
	Keywords []string
}

var topicRules = []labelRule{
	{"gym routines", []string{"gym", "workout", "training program", "routine"}},
	{"nutrition", []string{"nutrition", "meal plan", "macros", "diet"}},
	{"personal finance", []string{"invest", "budget", "savings", "passive income"}},
	{"skincare", []string{"skincare", "skin care", "routine for skin"}},
	{"online business", []string{"online business", "digital product", "sell online", "ecommerce"}},
	{"ai tools", []string{"chatgpt", "ai tool", "automation", "prompt"}},
	{"real estate investing", []string{"real estate", "rental", "property", "airbnb"}},
	{"mindset", []string{"mindset", "discipline", "habits", "motivation"}},
	{"content creation", []string{"content", "creator", "grow your audience", "going viral"}},
	{"career growth", []string{"career", "resume", "linkedin", "job search"}},
}

var audienceRules = []labelRule{
	{"aspiring creators", []string{"creator", "grow your audience", "content"}},
	{"fitness enthusiasts", []string{"gym", "workout", "fitness", "lifter"}},
	{"small business owners", []string{"business owner", "entrepreneur", "founder", "agency"}},
	{"beginner investors", []string{"invest", "beginner", "passive income", "portfolio"}},
	{"busy professionals", []string{"busy", "professional", "9-5", "productivity"}},
	{"women", []string{"women", "for her", "girls", "mom"}},
	{"students", []string{"student", "college", "study"}},
}

var productRules = []labelRule{
	{"course", []string{"course", "masterclass", "academy", "bootcamp"}},
	{"coaching", []string{"coaching", "1:1", "1-on-1", "mentorship", "book a call"}},
	{"template", []string{"template", "preset", "swipe file", "spreadsheet"}},
	{"membership", []string{"membership", "community", "discord", "inner circle"}},
	{"newsletter", []string{"newsletter", "subscribe", "weekly email"}},
	{"digital guide", []string{"guide", "ebook", "e-book", "meal plan", "pdf"}},
	{"service", []string{"done for you", "agency", "service", "audit"}},
}

var intentRules = []labelRule{
	{"direct_purchase", []string{"buy now", "shop", "get instant access", "checkout", "purchase"}},
	{"lead_gen", []string{"book a call", "free consultation", "apply now", "waitlist", "dm me"}},
	{"affiliate", []string{"affiliate", "use my code", "link in bio", "discount code"}},
	{"community_growth", []string{"join the community", "join us", "subscribe", "follow for"}},
}
