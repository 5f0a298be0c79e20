package chat

import (
	"strings"

	"brain_server/core/service/classify"
)

// =============================================================================
// Reply Renderer (Azerbaijani templates)
// =============================================================================

// Template replies keyed by intent. Each entry carries a short and a long
// form; the decision's response length picks between them.
type replyTemplate struct {
	short string
	long  string
}

var intentReplies = map[string]replyTemplate{
	classify.IntentGreeting: {
		short: "Salam! Sizə necə kömək edə bilərəm?",
		long:  "Salam! Xoş gördük. Sizə necə kömək edə bilərəm?",
	},
	classify.IntentThanks: {
		short: "Rica edirik!",
		long:  "Rica edirik! Başqa sualınız olsa, yazmağınız kifayətdir.",
	},
	classify.IntentPriceQuestion: {
		short: "Qiymət məlumatını indicə göndəririk.",
		long:  "Qiymətlə bağlı məlumatı dəqiqləşdirib bir neçə dəqiqə ərzində sizə göndərəcəyik.",
	},
	classify.IntentComplaint: {
		short: "Narahatlığınıza görə üzr istəyirik.",
		long:  "Narahatlığınıza görə üzr istəyirik. Probleminizi araşdırıb ən qısa zamanda həll edəcəyik.",
	},
	classify.IntentSlowResponse: {
		short: "Gecikməyə görə üzr istəyirik.",
		long:  "Gecikməyə görə üzr istəyirik. Müraciətiniz bizim üçün vacibdir və indi onunla məşğul oluruq.",
	},
	classify.IntentRequestHelp: {
		short: "Əlbəttə, kömək edəcəyik.",
		long:  "Əlbəttə, kömək edəcəyik. Zəhmət olmasa, vəziyyəti bir az ətraflı yazın.",
	},
	classify.IntentRequestInfo: {
		short: "Mesajınızı aldıq, indicə cavablandırırıq.",
		long:  "Mesajınızı aldıq. Məlumatı dəqiqləşdirib qısa zamanda sizə qayıdacağıq.",
	},
	classify.IntentConfusion: {
		short: "İzah edək.",
		long:  "Narahat olmayın, addım-addım izah edəcəyik. Hansı hissə aydın olmadı?",
	},
	classify.IntentComparison: {
		short: "Müqayisəli məlumat göndəririk.",
		long:  "Variantları müqayisə edib üstünlükləri ilə birlikdə sizə təqdim edəcəyik.",
	},
	classify.IntentPositive: {
		short: "Məmnun qaldığınıza çox şadıq!",
		long:  "Məmnun qaldığınıza çox şadıq! Yenidən sizə xidmət göstərməkdən məmnun olarıq.",
	},
	classify.IntentProductInterest: {
		short: "Məhsul haqqında məlumat göndəririk.",
		long:  "Maraqlandığınız məhsul haqqında ətraflı məlumatı indicə sizə təqdim edirik.",
	},
	classify.IntentConfirmation: {
		short: "Təsdiq olundu.",
		long:  "Təsdiq olundu. Əlavə sualınız olsa, yazın.",
	},
}

// operatorReply is used whenever the decision escalates to a human.
var operatorReply = replyTemplate{
	short: "Sizi operatorla əlaqələndiririk.",
	long:  "Sizi operatorla əlaqələndiririk, zəhmət olmasa bir az gözləyin. Əməkdaşımız indicə sizinlə əlaqə saxlayacaq.",
}

// empathyPrefix is prepended for the empathetic tone unless the template
// already opens with an apology.
const empathyPrefix = "Sizi başa düşürük. "

var defaultReply = replyTemplate{
	short: "Mesajınızı aldıq.",
	long:  "Mesajınızı aldıq, qısa zamanda cavablandıracağıq.",
}

// RenderReply turns one classification result into the outbound Azerbaijani
// reply text. The text is a holding reply in the bot's voice; the decision
// record still carries the full routing detail.
func RenderReply(result classify.Result) string {
	d := result.Decision
	if d == nil {
		return defaultReply.short
	}
	if d.NextAction == "ignore" {
		return ""
	}

	tpl := defaultReply
	if d.OperatorRequired {
		tpl = operatorReply
	} else if result.Intent != nil {
		if t, ok := intentReplies[result.Intent.Intent]; ok {
			tpl = t
		}
	}

	text := tpl.long
	if d.ResponseLength == classify.LengthShort {
		text = tpl.short
	}

	if d.Tone == classify.ToneEmpathetic && !strings.Contains(text, "üzr istəyirik") {
		text = empathyPrefix + text
	}
	return text
}
