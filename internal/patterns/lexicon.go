package patterns

// The lexicon targets German-language reflections.

var analyticalConnectors = MustRuleSet("analytical", Connector,
	"weil",
	"denn",
	"deshalb",
	"daher",
	"deswegen",
	"darum",
	"dadurch",
	"folglich",
	"somit",
	"infolgedessen",
	"aufgrund",
	"aus diesem grund",
	"der grund",
	"die ursache",
	"führte dazu",
	"lag daran",
	"zurückzuführen",
	"hängt damit zusammen",
)

var criticalConnectors = MustRuleSet("critical", Connector,
	"jedoch",
	"allerdings",
	"hingegen",
	"andererseits",
	"dennoch",
	"trotzdem",
	"im gegensatz",
	"kritisch",
	"hinterfrage",
	"hinterfragen",
	"hinterfragt",
	"infrage",
	"in frage",
	"bezweifle",
	"zweifel",
	"möglicherweise",
	"nicht unbedingt",
	"alternativ",
	"alternative",
	"andere perspektive",
	"anderen perspektive",
	"widerspruch",
	"widerspricht",
)

var metacognitiveTerms = MustRuleSet("metacognition", Plain,
	"nachgedacht",
	"nachdenken",
	"gedanken",
	"reflektier",
	"bewusst",
	"erkannt",
	"erkenntnis",
	"gelernt",
	"verstanden",
	"verständnis",
	"einsicht",
	"überlegt",
	"überlegung",
	"wahrgenommen",
	"eingesehen",
	"selbstkritisch",
	"ich denke",
	"denkweise",
)

var strongMetacognitivePatterns = MustRuleSet("metacognition.strong", Strong,
	`selbstreflexion`,
	`metakogniti`,
	`(?:mein|meinen|meinem)\s+(?:eigenen?\s+)?(?:denk|lern)prozess`,
	`(?:eigenes?|eigenen)\s+(?:denken|lernen|verhalten)`,
	`mir\s+(?:ist\s+)?(?:klar|bewusst)\s+geworden`,
	`ich\s+(?:habe\s+)?(?:gelernt|erkannt|gemerkt),?\s+dass`,
)

var actionTerms = MustRuleSet("action", Plain,
	"werde",
	"plane",
	"vorgenommen",
	"vorhaben",
	"nächste mal",
	"nächstes mal",
	"zukünftig",
	"künftig",
	"ziel",
	"umsetzen",
	"ausprobieren",
	"anwenden",
	"nächster schritt",
	"maßnahme",
)

var strongActionPatterns = MustRuleSet("action.strong", Strong,
	`ich\s+werde\s+ab\s+sofort`,
	`ich\s+nehme\s+mir\s+(?:fest\s+)?vor`,
	`beim\s+nächsten\s+mal\s+werde\s+ich`,
	`(?:ab\s+)?(?:morgen|nächste\s+woche)\s+werde\s+ich`,
	`(?:mein|unser)\s+(?:nächster\s+schritt|ziel)\s+(?:ist|wird)`,
	`konkrete[nr]?\s+(?:plan|schritte?|maßnahmen?)`,
)
