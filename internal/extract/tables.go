package extract

import "github.com/respicare/triage-engine/internal/domain"

// stopWords is the Spanish stop-word set filtered out during
// tokenization. Medical terms are never stop words.
var stopWords = map[string]struct{}{
	"el": {}, "la": {}, "de": {}, "que": {}, "y": {}, "a": {}, "en": {},
	"un": {}, "ser": {}, "se": {}, "no": {}, "haber": {}, "por": {},
	"con": {}, "su": {}, "para": {}, "como": {}, "estar": {},
	"tener": {}, "le": {}, "lo": {}, "todo": {}, "pero": {}, "más": {},
	"hacer": {}, "o": {}, "poder": {}, "decir": {}, "este": {}, "ir": {},
	"otro": {}, "ese": {}, "si": {}, "me": {}, "ya": {}, "ver": {},
	"porque": {}, "dar": {}, "cuando": {}, "él": {}, "muy": {},
	"sin": {}, "vez": {}, "mucho": {}, "saber": {}, "qué": {},
	"sobre": {}, "mi": {}, "alguno": {}, "mismo": {}, "yo": {},
	"también": {}, "hasta": {}, "año": {}, "dos": {}, "querer": {},
	"entre": {}, "así": {}, "primero": {}, "desde": {}, "grande": {},
	"eso": {}, "ni": {}, "nos": {}, "llegar": {}, "pasar": {},
	"tiempo": {}, "ella": {}, "sí": {}, "día": {}, "uno": {},
	"bien": {}, "poco": {}, "deber": {}, "entonces": {}, "poner": {},
	"cosa": {}, "tanto": {}, "hombre": {}, "parecer": {},
	"nuestro": {}, "tan": {}, "donde": {}, "ahora": {}, "parte": {},
	"después": {}, "vida": {}, "quedar": {}, "siempre": {},
	"creer": {}, "hablar": {}, "llevar": {}, "seguir": {},
	"encontrar": {}, "llamar": {}, "venir": {}, "pensar": {},
	"sacar": {}, "luego": {}, "trabajar": {}, "mirar": {},
	"todavía": {}, "tengo": {}, "siento": {},
}

// symptomPhrases are multi-word symptom phrases matched against the
// full message before any token matching. Order matters: longer, more
// specific phrases come before the generic ones they contain.
var symptomPhrases = []string{
	"dificultad respiratoria extrema",
	"dificultad para respirar",
	"dificultad respiratoria",
	"opresion en el pecho",
	"opresión en el pecho",
	"dolor de garganta",
	"dolor de cabeza",
	"dolor de pecho",
	"dolor de oido",
	"dolor de oído",
	"dolor torácico",
	"dolor toracico",
	"falta de aire",
	"ahogo",
	"dolores musculares",
	"dolores corporales",
	"dolores de cuerpo",
	"síntomas gastrointestinales",
	"sintomas gastrointestinales",
	"malestar estomacal",
	"fiebre alta",
	"fiebre moderada",
	"fiebre leve",
	"tos seca",
	"tos productiva",
	"tos con flema",
	"tos con sangre",
	"congestión nasal",
	"congestion nasal",
	"secreción nasal",
	"secrecion nasal",
	"rinorrea",
	"secreción acuosa",
	"secrecion acuosa",
	"fatiga extrema",
	"cansancio extremo",
	"agotamiento",
	"picazón nasal",
	"picazon nasal",
	"picazón en ojos",
	"picazon en ojos",
	"lagrimeo",
	"pérdida de olfato",
	"perdida de olfato",
	"pérdida de voz",
	"perdida de voz",
}

// phraseCanonical maps accented/unaccented spelling variants of a
// phrase to one canonical form, so dedup works across spellings.
var phraseCanonical = map[string]string{
	"congestion nasal":                 "congestión nasal",
	"secrecion nasal":                  "secreción nasal",
	"secrecion acuosa":                 "secreción acuosa",
	"picazon nasal":                    "picazón nasal",
	"picazon en ojos":                  "picazón en ojos",
	"sintomas gastrointestinales":      "síntomas gastrointestinales",
	"dolor de oido":                    "dolor de oído",
	"dolor toracico":                   "dolor torácico",
	"opresion en el pecho":             "opresión en el pecho",
	"perdida de olfato":                "pérdida de olfato",
	"perdida de voz":                   "pérdida de voz",
	"dificultad para respirar":         "dificultad respiratoria",
	"falta de aire":                    "dificultad respiratoria",
	"ahogo":                            "dificultad respiratoria",
	"cansancio extremo":                "fatiga extrema",
	"agotamiento":                      "fatiga extrema",
	"dolores corporales":               "dolores musculares",
	"dolores de cuerpo":                "dolores musculares",
	"tos con sangre":                   "hemoptisis",
	"dificultad respiratoria extrema":  "dificultad respiratoria extrema",
}

// tokenPatterns maps single tokens to the canonical symptom they
// indicate. Token matches carry lower confidence than phrase matches.
var tokenPatterns = map[string]string{
	"estornudos":          "estornudos",
	"congestion":          "congestión nasal",
	"congestión":          "congestión nasal",
	"nasal":               "congestión nasal",
	"secrecion":           "secreción nasal",
	"secreción":           "secreción nasal",
	"picazon":             "picazón nasal",
	"picazón":             "picazón nasal",
	"lagrimeo":            "lagrimeo",
	"fiebre":              "fiebre",
	"febril":              "fiebre",
	"tos":                 "tos",
	"dolor":               "dolor de garganta",
	"garganta":            "dolor de garganta",
	"fatiga":              "fatiga",
	"cansancio":           "fatiga",
	"dolores":             "dolores musculares",
	"musculares":          "dolores musculares",
	"mialgias":            "dolores musculares",
	"gastrointestinales":  "síntomas gastrointestinales",
	"nauseas":             "náuseas",
	"náuseas":             "náuseas",
	"vomito":              "vómito",
	"vómito":              "vómito",
	"diarrea":             "diarrea",
	"escalofrios":         "escalofríos",
	"escalofríos":         "escalofríos",
	"sibilancias":         "sibilancias",
	"disnea":              "disnea",
	"cianosis":            "cianosis",
	"hemoptisis":          "hemoptisis",
	"estridor":            "estridor",
	"taquipnea":           "taquipnea",
	"ronquera":            "ronquera",
	"confusion":           "confusión",
	"confusión":           "confusión",
	"flema":               "tos con flema",
	"esputo":              "esputo",
}

// categoryTable assigns each canonical symptom its clinical family.
// Symptoms not listed stay uncategorized.
var categoryTable = map[string]domain.SymptomCategory{
	"tos":                             domain.CategoryRespiratory,
	"tos seca":                        domain.CategoryRespiratory,
	"tos productiva":                  domain.CategoryRespiratory,
	"tos con flema":                   domain.CategoryRespiratory,
	"dificultad respiratoria":         domain.CategoryRespiratory,
	"dificultad respiratoria extrema": domain.CategoryRespiratory,
	"disnea":                          domain.CategoryRespiratory,
	"sibilancias":                     domain.CategoryRespiratory,
	"estridor":                        domain.CategoryRespiratory,
	"taquipnea":                       domain.CategoryRespiratory,
	"cianosis":                        domain.CategoryRespiratory,
	"hemoptisis":                      domain.CategoryRespiratory,
	"esputo":                          domain.CategoryRespiratory,
	"congestión nasal":                domain.CategoryRespiratory,
	"secreción nasal":                 domain.CategoryRespiratory,
	"secreción acuosa":                domain.CategoryRespiratory,
	"estornudos":                      domain.CategoryRespiratory,
	"ronquera":                        domain.CategoryRespiratory,
	"pérdida de voz":                  domain.CategoryRespiratory,
	"opresión en el pecho":            domain.CategoryRespiratory,
	"fiebre":                          domain.CategoryFever,
	"fiebre alta":                     domain.CategoryFever,
	"fiebre moderada":                 domain.CategoryFever,
	"fiebre leve":                     domain.CategoryFever,
	"escalofríos":                     domain.CategoryFever,
	"dolor de garganta":               domain.CategoryPain,
	"dolor de cabeza":                 domain.CategoryPain,
	"dolor de pecho":                  domain.CategoryPain,
	"dolor de oído":                   domain.CategoryPain,
	"dolor torácico":                  domain.CategoryPain,
	"dolores musculares":              domain.CategoryPain,
	"fatiga":                          domain.CategoryFatigue,
	"fatiga extrema":                  domain.CategoryFatigue,
	"náuseas":                         domain.CategoryDigestive,
	"vómito":                          domain.CategoryDigestive,
	"diarrea":                         domain.CategoryDigestive,
	"malestar estomacal":              domain.CategoryDigestive,
	"síntomas gastrointestinales":     domain.CategoryDigestive,
	"confusión":                       domain.CategoryNeurological,
	"pérdida de olfato":               domain.CategoryNeurological,
	"lagrimeo":                        domain.CategoryRespiratory,
	"picazón nasal":                   domain.CategoryRespiratory,
	"picazón en ojos":                 domain.CategoryRespiratory,
}

// intensityWords map qualifier tokens that may follow a symptom phrase
// to the intensity annotation.
var intensityWords = map[string]domain.IntensityQualifier{
	"leve":      domain.IntensityMild,
	"leves":     domain.IntensityMild,
	"ligera":    domain.IntensityMild,
	"ligero":    domain.IntensityMild,
	"moderada":  domain.IntensityModerate,
	"moderado":  domain.IntensityModerate,
	"intensa":   domain.IntensityIntense,
	"intenso":   domain.IntensityIntense,
	"fuerte":    domain.IntensityIntense,
	"severa":    domain.IntensityIntense,
	"severo":    domain.IntensityIntense,
	"extrema":   domain.IntensityIntense,
	"extremo":   domain.IntensityIntense,
	"marcada":   domain.IntensityIntense,
}
