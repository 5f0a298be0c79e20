package rules

import "brain_server/core/domain"

// defaultTables is the built-in rule set used when no rule files are present.
// Phrases are written in natural Azerbaijani spelling; the matcher folds
// diacritics, so plain-Latin customer spellings still hit.
func defaultTables() domain.RuleTables {
	return domain.RuleTables{
		Mood:   defaultMoodTable(),
		Intent: defaultIntentTable(),
		State:  defaultStateRules(),
	}
}

func defaultMoodTable() domain.RuleTable {
	return domain.RuleTable{
		"abuse": {
			Phrases: []string{
				"axmaq", "səfeh", "dəli", "rəzil", "şərəfsiz",
				"siz nə axmaqsınız", "ağlınız yoxdur", "heyvansınız",
			},
			Description: "direct insults",
		},
		"threat": {
			Phrases: []string{
				"polisə verəcəm", "məhkəməyə verəcəm", "şikayət edəcəm",
				"bağlatdıracam", "peşman olacaqsınız", "sizi bağlataram",
			},
			Description: "explicit threats of consequences",
		},
		"blackmail": {
			Phrases: []string{
				"hamıya deyəcəm", "sosial şəbəkədə paylaşacam",
				"reytinqinizi salacam", "mənfi rəy yazacam",
			},
			Description: "reputational pressure",
		},
		"accusation": {
			Phrases: []string{
				"siz dələduzsunuz", "dələduzsunuz", "aldadırsınız",
				"fırıldaqçısınız", "yalan deyirsiniz", "məni aldatdınız",
			},
			Description: "accusations of fraud or deceit",
		},
		"harassment": {
			Phrases: []string{
				"neçə dəfə yazmışam", "yüz dəfə demişəm", "hər gün yazıram",
				"cavab verənə qədər yazacam",
			},
			Description: "repeated insistent pressure",
		},
		"urgency": {
			Phrases: []string{
				"təcili lazımdır", "dərhal cavab verin", "indi lazımdır",
				"gözləyə bilmirəm", "çox tələsirəm",
			},
			Description: "time pressure",
		},
		"anger": {
			Phrases: []string{
				"əsəbiyəm", "zəhləm gedir", "hirsləndim", "qəzəbliyəm",
				"cin atına mindim", "səbrim tükəndi",
			},
		},
		"frustration": {
			Phrases: []string{
				"bezmişəm", "yorulmuşam sizdən", "daha dözə bilmirəm",
				"əl çəkirəm", "boğaza yığılmışam",
			},
		},
		"sadness": {
			Phrases: []string{
				"kefim yoxdur", "pis oldum", "üzüldüm", "qəlbim qırıldı",
				"məyus oldum",
			},
		},
		"stress": {
			Phrases: []string{
				"stress keçirirəm", "narahatam", "gərginəm", "təşvişdəyəm",
				"ürəyim sıxılır",
			},
		},
		"joy": {
			Phrases: []string{
				"çox şadam", "sevinirəm", "əla oldu", "möhtəşəmdir",
				"çox gözəldir", "super oldu",
			},
		},
		"satisfaction": {
			Phrases: []string{
				"təşəkkür edirəm", "razıyam", "məmnunam", "sağ olun",
				"minnətdaram", "çox yaxşı oldu",
			},
		},
		"thinking_state": {
			Phrases: []string{
				"fikirləşəcəm", "düşünəcəm", "sonra deyərəm", "baxarıq",
				"məsləhətləşim", "qərar verməmişəm",
			},
		},
		"non_emotional": {
			Phrases: []string{
				"salam", "sabahınız xeyir", "axşamınız xeyir", "hə", "yox",
				"oldu", "tamam", "aydındır",
			},
		},
	}
}

func defaultIntentTable() domain.RuleTable {
	return domain.RuleTable{
		"slow_response": {
			Phrases:    []string{"niyə gec cavab verirsiniz", "cavab yazmırsınız", "gec cavab"},
			Goal:       "get_response",
			PainPoints: []string{"response_time"},
		},
		"accusation": {
			Phrases: []string{"siz dələduzsunuz", "aldadırsınız", "fırıldaq edirsiniz"},
			Goal:    "resolve_dispute",
		},
		"request_help": {
			Phrases: []string{"kömək edin", "yardım lazımdır", "necə edim", "köməklik göstərin"},
			Goal:    "get_help",
		},
		"request_info": {
			Phrases: []string{"məlumat verin", "ətraflı deyin", "haqqında danışın"},
			Goal:    "get_information",
		},
		"complaint": {
			Phrases:    []string{"şikayətim var", "narazıyam", "problem var", "işləmir"},
			Goal:       "resolve_issue",
			PainPoints: []string{"service"},
		},
		"price_question": {
			Phrases: []string{"qiymət neçədir", "neçəyədir", "qiyməti deyin", "nə qədərdir"},
			Goal:    "learn_price",
		},
		"comparison": {
			Phrases: []string{"hansı daha yaxşıdır", "fərqi nədir", "müqayisə edin"},
			Goal:    "compare_options",
		},
		"greeting": {
			Phrases: []string{"salam", "sabahınız xeyir", "axşamınız xeyir", "necəsiniz"},
			Goal:    "greet",
		},
		"thanks": {
			Phrases: []string{"təşəkkür", "sağ olun", "minnətdaram", "çox sağ ol"},
			Goal:    "thank",
		},
		"confusion": {
			Phrases: []string{"başa düşmədim", "anlamadım", "nə demək istəyirsiniz", "aydın olmadı"},
			Goal:    "clarify",
		},
	}
}

func defaultStateRules() domain.StateRules {
	return domain.StateRules{
		"complaint": {
			{Keywords: []string{"zeng", "zeng edin"}, State: "waiting_callback"},
		},
		"price_question": {
			{Keywords: []string{"endirim", "kampaniya"}, State: "bargaining"},
		},
	}
}
