package langnames

// builtin maps lower-case language names, in English and in the language
// itself plus a few common translations, to the locale they denote.
var builtin = map[string]string{
	// Arabic
	"arabic": "ar", "العربية": "ar", "arabisch": "ar", "arabe": "ar", "árabe": "ar",
	// Chinese
	"chinese": "zh-cn", "chinese (mandarin)": "zh-cn", "mandarin": "zh-cn",
	"chinese (simplified)": "zh-cn", "chinese (traditional)": "zh-tw",
	"中文": "zh-cn", "简体中文": "zh-cn", "繁體中文": "zh-tw", "chinesisch": "zh-cn", "chinois": "zh-cn",
	// Danish
	"danish": "da", "dansk": "da", "dänisch": "da", "danois": "da",
	// Dutch
	"dutch": "nl", "nederlands": "nl", "niederländisch": "nl", "néerlandais": "nl",
	// English
	"english": "en", "englisch": "en", "anglais": "en", "inglés": "en", "inglese": "en",
	"english (us)": "en-us", "american english": "en-us",
	// French
	"french": "fr", "français": "fr", "francais": "fr", "französisch": "fr", "francés": "fr",
	// German
	"german": "de", "deutsch": "de", "allemand": "de", "alemán": "de", "tedesco": "de",
	// Hindi
	"hindi": "hi", "हिन्दी": "hi",
	// Icelandic
	"icelandic": "is", "íslenska": "is", "isländisch": "is",
	// Italian
	"italian": "it", "italiano": "it", "italienisch": "it", "italien": "it",
	// Japanese
	"japanese": "ja", "日本語": "ja", "にほんご": "ja-hira", "japanisch": "ja", "japonais": "ja",
	// Korean
	"korean": "ko", "한국어": "ko", "koreanisch": "ko", "coréen": "ko",
	// Norwegian
	"norwegian": "nb", "norsk": "nb", "norsk bokmål": "nb", "norsk nynorsk": "nn", "norwegisch": "nb",
	// Polish
	"polish": "pl", "polski": "pl", "polnisch": "pl", "polonais": "pl",
	// Portuguese
	"portuguese": "pt", "portuguese (european)": "pt", "português": "pt", "portugiesisch": "pt",
	"portuguese (brazilian)": "pt-br", "brazilian portuguese": "pt-br", "português brasileiro": "pt-br",
	// Romanian
	"romanian": "ro", "română": "ro", "rumänisch": "ro", "roumain": "ro",
	// Russian
	"russian": "ru", "русский": "ru", "russisch": "ru", "russe": "ru",
	// Spanish
	"spanish": "es", "spanish (european)": "es", "español": "es", "espanol": "es", "spanisch": "es",
	"espagnol": "es", "spanish (latin american)": "es-419", "latin american spanish": "es-419",
	// Swedish
	"swedish": "sv", "svenska": "sv", "schwedisch": "sv", "suédois": "sv",
	// Turkish
	"turkish": "tr", "türkçe": "tr", "türkisch": "tr", "turc": "tr",
	// Welsh
	"welsh": "cy", "cymraeg": "cy", "walisisch": "cy", "gallois": "cy",
}
