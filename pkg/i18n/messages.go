package i18n

// DefaultMessages returns built-in translations for all supported locales.
// These can be overridden by loading JSON files from a directory.
func DefaultMessages() map[Locale]map[string]string {
	return map[Locale]map[string]string{
		LocaleEn: enMessages,
		LocaleHi: hiMessages,
	}
}

var enMessages = map[string]string{
	// Common errors
	"error.not_found":         "The requested resource was not found",
	"error.unauthorized":      "Authentication is required",
	"error.forbidden":         "You do not have permission to access this resource",
	"error.bad_request":       "Invalid request",
	"error.internal":          "An internal server error occurred",
	"error.too_many_requests": "Too many requests. Please try again later",
	"error.validation":        "Invalid input",

	// Auth
	"auth.login_failed":     "Username or password is incorrect",
	"auth.token_expired":    "Your session has expired. Please log in again",
	"auth.token_invalid":    "Invalid authentication token",
	"auth.account_disabled": "This account has been disabled",

	// Queue
	"queue.not_found":          "Queue item not found",
	"queue.version_conflict":   "Another reviewer already handled this item. Please refresh and try again",
	"queue.terminal_state":     "This posting has already been resolved",
	"queue.illegal_transition": "This action is not allowed from the item's current state",
	"queue.enqueued":           "Posting submitted for review",

	// Notification subjects
	"notify.posting_approved.subject":  "Your posting \"%s\" has been approved",
	"notify.posting_rejected.subject":  "Your posting \"%s\" was not approved: %s",
	"notify.escalation_review.subject": "Escalated posting awaiting review: %s",

	// Rate limit
	"rate_limit.exceeded": "Request limit exceeded. Please try again in %d seconds",

	// Search
	"search.query_required": "Please enter a search term",
	"search.query_too_long": "Search term is too long",
}

var hiMessages = map[string]string{
	// Common errors
	"error.not_found":         "अनुरोधित संसाधन नहीं मिला",
	"error.unauthorized":      "प्रमाणीकरण आवश्यक है",
	"error.forbidden":         "आपको इस संसाधन तक पहुंच की अनुमति नहीं है",
	"error.bad_request":       "अमान्य अनुरोध",
	"error.internal":          "आंतरिक सर्वर त्रुटि हुई",
	"error.too_many_requests": "बहुत अधिक अनुरोध। कृपया बाद में पुनः प्रयास करें",
	"error.validation":        "अमान्य इनपुट",

	// Auth
	"auth.login_failed":     "उपयोगकर्ता नाम या पासवर्ड गलत है",
	"auth.token_expired":    "आपका सत्र समाप्त हो गया है। कृपया पुनः लॉगिन करें",
	"auth.token_invalid":    "अमान्य प्रमाणीकरण टोकन",
	"auth.account_disabled": "यह खाता निष्क्रिय कर दिया गया है",

	// Queue
	"queue.not_found":          "कतार आइटम नहीं मिला",
	"queue.version_conflict":   "किसी अन्य समीक्षक ने इसे पहले ही संसाधित कर दिया है। कृपया रीफ्रेश करके पुनः प्रयास करें",
	"queue.terminal_state":     "यह पोस्टिंग पहले ही हल हो चुकी है",
	"queue.illegal_transition": "वर्तमान स्थिति से यह कार्रवाई अनुमत नहीं है",
	"queue.enqueued":           "पोस्टिंग समीक्षा के लिए भेज दी गई है",

	// Notification subjects
	"notify.posting_approved.subject":  "आपकी पोस्टिंग \"%s\" स्वीकृत हो गई है",
	"notify.posting_rejected.subject":  "आपकी पोस्टिंग \"%s\" स्वीकृत नहीं हुई: %s",
	"notify.escalation_review.subject": "समीक्षा के लिए एस्कलेटेड पोस्टिंग: %s",

	// Rate limit
	"rate_limit.exceeded": "अनुरोध सीमा पार हो गई। कृपया %d सेकंड बाद पुनः प्रयास करें",

	// Search
	"search.query_required": "कृपया खोज शब्द दर्ज करें",
	"search.query_too_long": "खोज शब्द बहुत लंबा है",
}
