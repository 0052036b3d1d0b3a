package catalog

var builtinVoices = []VoiceProfile{
	{ID: Alto, Name: "alto", Gender: Female, PlaybackRate: 1},
	{ID: Tenor, Name: "tenor", Gender: Male, PlaybackRate: 1},
	{ID: Squeak, Name: "squeak", Gender: Female, PlaybackRate: 1.19},
	{ID: Giant, Name: "giant", Gender: Male, PlaybackRate: 0.84},
}

var builtinLanguages = []LanguageProfile{
	{ID: "ar", Name: "Arabic", Locales: []string{"ar"}, SynthLocale: "arb", SingleGender: true},
	{ID: "zh-cn", Name: "Chinese (Mandarin)", Locales: []string{"zh-cn", "zh-tw"}, SynthLocale: "cmn-CN", SingleGender: true},
	{ID: "da", Name: "Danish", Locales: []string{"da"}, SynthLocale: "da-DK"},
	{ID: "nl", Name: "Dutch", Locales: []string{"nl"}, SynthLocale: "nl-NL"},
	{ID: "en", Name: "English", Locales: []string{"en", "en-GB"}, SynthLocale: "en-GB"},
	{ID: "en-us", Name: "English (US)", Locales: []string{"en-us"}, SynthLocale: "en-US"},
	{ID: "fr", Name: "French", Locales: []string{"fr"}, SynthLocale: "fr-FR"},
	{ID: "de", Name: "German", Locales: []string{"de"}, SynthLocale: "de-DE"},
	{ID: "hi", Name: "Hindi", Locales: []string{"hi"}, SynthLocale: "hi-IN", SingleGender: true},
	{ID: "is", Name: "Icelandic", Locales: []string{"is"}, SynthLocale: "is-IS"},
	{ID: "it", Name: "Italian", Locales: []string{"it"}, SynthLocale: "it-IT"},
	{ID: "ja", Name: "Japanese", Locales: []string{"ja", "ja-hira"}, SynthLocale: "ja-JP"},
	{ID: "ko", Name: "Korean", Locales: []string{"ko"}, SynthLocale: "ko-KR", SingleGender: true},
	{ID: "nb", Name: "Norwegian", Locales: []string{"nb", "nn"}, SynthLocale: "nb-NO", SingleGender: true},
	{ID: "pl", Name: "Polish", Locales: []string{"pl"}, SynthLocale: "pl-PL"},
	{ID: "pt", Name: "Portuguese (European)", Locales: []string{"pt"}, SynthLocale: "pt-PT"},
	{ID: "pt-br", Name: "Portuguese (Brazilian)", Locales: []string{"pt-br"}, SynthLocale: "pt-BR"},
	{ID: "ro", Name: "Romanian", Locales: []string{"ro"}, SynthLocale: "ro-RO", SingleGender: true},
	{ID: "ru", Name: "Russian", Locales: []string{"ru"}, SynthLocale: "ru-RU"},
	{ID: "es", Name: "Spanish (European)", Locales: []string{"es"}, SynthLocale: "es-ES"},
	{ID: "es-419", Name: "Spanish (Latin American)", Locales: []string{"es-419"}, SynthLocale: "es-US"},
	{ID: "sv", Name: "Swedish", Locales: []string{"sv"}, SynthLocale: "sv-SE", SingleGender: true},
	{ID: "tr", Name: "Turkish", Locales: []string{"tr"}, SynthLocale: "tr-TR", SingleGender: true},
	{ID: "cy", Name: "Welsh", Locales: []string{"cy"}, SynthLocale: "cy-GB", SingleGender: true},
}
