package classify

// Lexicon holds the word and host lists classification runs on. Empty fields
// fall back to the built-in lists.
type Lexicon struct {
	JobPathPatterns  []string
	JobKeywords      []string
	ExclusionPhrases []string
	ATSHosts         []string
	AggregatorHosts  []string
}

func (l Lexicon) withDefaults() Lexicon {
	d := DefaultLexicon()
	if len(l.JobPathPatterns) == 0 {
		l.JobPathPatterns = d.JobPathPatterns
	}
	if len(l.JobKeywords) == 0 {
		l.JobKeywords = d.JobKeywords
	}
	if len(l.ExclusionPhrases) == 0 {
		l.ExclusionPhrases = d.ExclusionPhrases
	}
	if len(l.ATSHosts) == 0 {
		l.ATSHosts = d.ATSHosts
	}
	if len(l.AggregatorHosts) == 0 {
		l.AggregatorHosts = d.AggregatorHosts
	}
	return l
}

// DefaultLexicon returns the built-in classification lists.
func DefaultLexicon() Lexicon {
	return Lexicon{
		JobPathPatterns: []string{
			"/job/", "/jobs/", "/career/", "/careers/",
			"/position/", "/positions/", "/opening/", "/openings/",
			"/vacancy/", "/vacancies/", "/role/", "/roles/",
			"/opportunity/", "/opportunities/", "/hiring/", "/apply/",
		},
		JobKeywords: []string{
			"engineer", "developer", "manager", "director", "analyst",
			"specialist", "coordinator", "lead", "senior", "junior",
			"associate", "head of", "designer", "architect", "consultant",
			"representative", "executive", "scientist", "researcher",
			"technician", "administrator", "officer",
		},
		ExclusionPhrases: []string{
			"home", "about", "contact", "blog", "news", "all jobs",
			"view all", "search", "filter", "category", "department",
			"location", "apply now", "learn more", "read more",
			"sign up", "register", "login", "logout",
		},
		ATSHosts: []string{
			"greenhouse.io", "lever.co", "workdayjobs.com",
			"myworkdayjobs.com", "paycomonline.net", "icims.com",
			"ultipro.com", "bamboohr.com", "jobvite.com",
			"smartrecruiters.com", "taleo.net",
		},
		AggregatorHosts: []string{
			"builtin.com", "indeed.com", "linkedin.com",
		},
	}
}

// documentSuffixes mark links to downloadable job descriptions.
var documentSuffixes = []string{".pdf", ".doc", ".docx"}

// headingPhrases mark the section headings that plain-text listings sit
// under.
var headingPhrases = []string{
	"open positions",
	"open roles",
	"current openings",
	"job openings",
	"available positions",
	"we're hiring",
	"join our team",
}
