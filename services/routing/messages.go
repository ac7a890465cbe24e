package routing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the key.
const (
	msgKeyRequired    = "[Error] %s requires an API key. Add one in your profile settings."
	msgCloudFailed    = "Connection lost. Check that the API key is correct."
	msgOllamaFailed   = "Could not connect to the Ollama server. Is Ollama running on your PC?"
	msgGroundedFailed = "The advisory service is unavailable right now. Please try again shortly."
	msgNoAnswer       = "Error"
)

var supportedLanguages = []language.Tag{language.Bengali, language.English}

var (
	languageMatcher = language.NewMatcher(supportedLanguages)
	messageCatalog  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Bengali))

	entries := map[string][2]string{
		msgKeyRequired: {
			"[Error] %s ব্যবহারের জন্য আপনার প্রোফাইল সেটিংস থেকে API Key প্রদান করুন।",
			msgKeyRequired,
		},
		msgCloudFailed: {
			"সংযোগ বিচ্ছিন্ন হয়েছে। এপিআই কী সঠিক কিনা যাচাই করুন।",
			msgCloudFailed,
		},
		msgOllamaFailed: {
			"Ollama সার্ভারের সাথে সংযোগ করা সম্ভব হয়নি। আপনার পিসিতে Ollama চালু আছে কি?",
			msgOllamaFailed,
		},
		msgGroundedFailed: {
			"দুঃখিত, এই মুহূর্তে পরামর্শ সেবা পাওয়া যাচ্ছে না। কিছুক্ষণ পর আবার চেষ্টা করুন।",
			msgGroundedFailed,
		},
		msgNoAnswer: {msgNoAnswer, msgNoAnswer},
	}

	for key, text := range entries {
		mustSet(b, language.Bengali, key, text[0])
		mustSet(b, language.English, key, text[1])
	}
	return b
}

func mustSet(b *catalog.Builder, tag language.Tag, key, msg string) {
	if err := b.SetString(tag, key, msg); err != nil {
		panic(err)
	}
}

// ParseLanguage maps a client language code onto Bangla or English.
// Empty, invalid and unsupported codes give Bangla.
func ParseLanguage(code string) language.Tag {
	if code == "" {
		return language.Bengali
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Bengali
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return language.Bengali
	}
	return supportedLanguages[idx]
}

// LanguageCode returns the two-letter code backends expect.
// Only a confident English tag gives "en"; everything else, including
// language.Und, is Bangla.
func LanguageCode(tag language.Tag) string {
	if tag == language.Und {
		return "bn"
	}
	if base, conf := tag.Base(); conf >= language.High && base.String() == "en" {
		return "en"
	}
	return "bn"
}

func localize(tag language.Tag, key string, args ...interface{}) string {
	if tag == language.Und {
		tag = language.Bengali
	}
	p := message.NewPrinter(tag, message.Catalog(messageCatalog))
	return p.Sprintf(key, args...)
}
