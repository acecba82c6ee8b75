package lint

import "git.home.luguber.info/inful/semcheck/internal/htmldoc"

// PresenceRule passes when at least one element with one of Tags exists and
// otherwise reports a single fixed advisory.
type PresenceRule struct {
	RuleName string
	Kind     Kind
	Tags     []string
	Message  string
}

// Name returns the rule identifier.
func (r *PresenceRule) Name() string { return r.RuleName }

// Check validates element presence.
func (r *PresenceRule) Check(doc *htmldoc.Document) Outcome {
	if doc.Has(r.Tags...) {
		return pass()
	}
	return fail(Diagnostic{Rule: r.RuleName, Kind: r.Kind, Message: r.Message})
}

func SummaryPresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleSummaryPresence,
		Kind:     KindMissingSummary,
		Tags:     []string{"summary"},
		Message:  "Постарайтесь использовать тэг <summary> для размещения краткого содержания или заголовка детализированного содержимого",
	}
}

func BlockquotePresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleBlockquotePresence,
		Kind:     KindMissingBlockquote,
		Tags:     []string{"blockquote"},
		Message:  "Постарайтесь использовать тэг <blockquote> для цитирования длинных фрагментов текста из внешних источников",
	}
}

func CitePresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleCitePresence,
		Kind:     KindMissingCite,
		Tags:     []string{"cite"},
		Message:  "Постарайтесь использовать тэг <cite> для указания названия произведения или источника цитаты",
	}
}

func TimePresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleTimePresence,
		Kind:     KindMissingTime,
		Tags:     []string{"time"},
		Message:  "Постарайтесь использовать тэг <time> для указания даты и/или времени",
	}
}

func AddressPresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleAddressPresence,
		Kind:     KindMissingAddress,
		Tags:     []string{"address"},
		Message:  "Постарайтесь использовать тэг <address> для указания контактной информации автора или владельца сайта",
	}
}

func QPresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleQPresence,
		Kind:     KindMissingQ,
		Tags:     []string{"q"},
		Message:  "Постарайтесь использовать тэг <q> для коротких цитат с автоматическим добавлением кавычек",
	}
}

func MarkPresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleMarkPresence,
		Kind:     KindMissingMark,
		Tags:     []string{"mark"},
		Message:  "Постарайтесь использовать тэг <mark> для выделения важной информации",
	}
}

func DelInsPresence() *PresenceRule {
	return &PresenceRule{
		RuleName: RuleDelInsPresence,
		Kind:     KindMissingDelIns,
		Tags:     []string{"del", "ins"},
		Message:  "Постарайтесь использовать тэги <del> для удаленного текста и <ins> для вставленного текста",
	}
}
