package mapping

// Defaults returns the standard 36-field PO rule set. The section
// numbers follow the fixed MOM layout used by the procurement team:
// 1 inquiry, 2 payment, 3 warranty, 4 liquidated damages, 5 bonds,
// 6 optional, 7 training, 8 delivery, 9 price, 10 special notes,
// 13 attachments.
func Defaults() *RuleSet {
	rs, err := NewRuleSet(defaultRules)
	if err != nil {
		panic("mapping: default rules invalid: " + err.Error())
	}
	return rs
}

var defaultRules = []Rule{
	// Header fields.
	{Field: "MOM_NO", Kind: KindHeader, Header: HeaderMOMNo},
	{Field: "MOM_DATE", Kind: KindHeader, Header: HeaderDate},
	{Field: "SUBJECT", Kind: KindHeader, Header: HeaderSubject},
	{Field: "PO_NO", Kind: KindCompose, Source: "MOM_NO", Suffix: "-A01"},

	// Section 1: inquiry / MR references.
	{Field: "MR_NO", Kind: KindPattern, Section: "1",
		Pattern: `MR-[\d-]+`},
	{Field: "MR_DATE", Kind: KindPattern, Section: "1",
		Pattern: `MR-[\d-]+[^/]*dated\s+([A-Za-z]+\s+\d+[a-z]*,?\s+\d{4})`, Group: 1},
	{Field: "PI_NO", Kind: KindPattern, Section: "1",
		Pattern: `([A-Z]+-[A-Z]-[A-Z0-9]+)\)?.*?dated\s+([A-Za-z]+\s+\d+[a-z]*,?\s+\d{4})`, Group: 1},
	{Field: "PI_DATE", Kind: KindPattern, Section: "1",
		Pattern: `([A-Z]+-[A-Z]-[A-Z0-9]+)\)?.*?dated\s+([A-Za-z]+\s+\d+[a-z]*,?\s+\d{4})`, Group: 2},
	{Field: "ITEM_DESC", Kind: KindPattern, Section: "1",
		Pattern: `/\s*([^/]+)$`, Group: 1},

	// Section 2: payment terms.
	{Field: "PAYMENT", Kind: KindSection, Section: "2"},
	{Field: "PAYMENT_FULL", Kind: KindSection, Section: "2", Subtree: true},
	{Field: "ADVANCE_PAYMENT", Kind: KindSection, Section: "2.1"},
	{Field: "PROGRESS_PAYMENT_1ST", Kind: KindSection, Section: "2.2"},
	{Field: "PROGRESS_PAYMENT_2ND", Kind: KindSection, Section: "2.3"},
	{Field: "DELIVERY_PAYMENT", Kind: KindSection, Section: "2.4"},
	{Field: "FINAL_PAYMENT", Kind: KindSection, Section: "2.5"},

	// Section 3: warranty.
	{Field: "WARRANTY", Kind: KindSection, Section: "3", Subtree: true},

	// Section 4: liquidated damages.
	{Field: "LIQUIDATED_DAMAGES", Kind: KindSection, Section: "4", Subtree: true},
	{Field: "LD_DELIVERY", Kind: KindSection, Section: "4.1"},
	{Field: "LD_ENGINEERING", Kind: KindSection, Section: "4.2"},
	{Field: "LD_MAX", Kind: KindSection, Section: "4.3"},

	// Section 5: bond requirements.
	{Field: "BOND_REQUIREMENTS", Kind: KindSection, Section: "5", Subtree: true},
	{Field: "BOND_APPLICATION", Kind: KindSection, Section: "5.1"},
	{Field: "ADVANCE_PROGRESS_BOND", Kind: KindSection, Section: "5.2"},
	{Field: "PERFORMANCE_BOND", Kind: KindSection, Section: "5.3"},
	{Field: "WARRANTY_BOND", Kind: KindSection, Section: "5.4"},
	{Field: "BOND_ISSUE", Kind: KindSection, Section: "5.5"},

	// Sections 6-7: optional scope, training.
	{Field: "OPTIONAL", Kind: KindSection, Section: "6", Subtree: true},
	{Field: "TRAINING_SUPERVISION", Kind: KindSection, Section: "7", Subtree: true},

	// Section 8: delivery.
	{Field: "DELIVERY_TERMS", Kind: KindSection, Section: "8"},
	{Field: "INCOTERMS", Kind: KindPattern, Section: "8",
		Pattern: `(FCA|FOB|CIF|CFR|EXW|DAP|DDP)[^,]*,[^,]+`},

	// Sections 9-10: price, special notes.
	{Field: "PRICE_SCOPE", Kind: KindSection, Section: "9", Subtree: true},
	{Field: "SPECIAL_NOTE", Kind: KindSection, Section: "10", Subtree: true},

	// Section 13: attachments.
	{Field: "ATTACHMENTS", Kind: KindSection, Section: "13", Subtree: true},
	{Field: "ATTACHMENTS_GENERAL", Kind: KindSection, Section: "13.1"},
	{Field: "ATTACHMENTS_TECHNICAL", Kind: KindSection, Section: "13.2"},
}
