package doctree

// Kind identifies the type of a Node. The set is closed; types the parser
// produces that have no dedicated kind map to KindOther.
type Kind uint8

const (
	KindOther Kind = iota
	KindRoot
	KindParagraph
	KindHeading
	KindText
	KindLink
	KindStrong
	KindEmphasis
	KindDelete
	KindInlineCode
	KindCode
	KindLinkReference
	KindImage
	KindFootnoteReference
	KindFootnoteDefinition
	KindBreak
	KindHTML
	KindBlockquote
	KindList
	KindListItem
	KindThematicBreak
	KindTable
	KindTableRow
	KindTableCell

	kindCount
)

// kindNames holds the mdast type name of each kind.
var kindNames = [kindCount]string{
	KindOther:              "other",
	KindRoot:               "root",
	KindParagraph:          "paragraph",
	KindHeading:            "heading",
	KindText:               "text",
	KindLink:               "link",
	KindStrong:             "strong",
	KindEmphasis:           "emphasis",
	KindDelete:             "delete",
	KindInlineCode:         "inlineCode",
	KindCode:               "code",
	KindLinkReference:      "linkReference",
	KindImage:              "image",
	KindFootnoteReference:  "footnoteReference",
	KindFootnoteDefinition: "footnoteDefinition",
	KindBreak:              "break",
	KindHTML:               "html",
	KindBlockquote:         "blockquote",
	KindList:               "list",
	KindListItem:           "listItem",
	KindThematicBreak:      "thematicBreak",
	KindTable:              "table",
	KindTableRow:           "tableRow",
	KindTableCell:          "tableCell",
}

// String returns the mdast type name, e.g. "inlineCode".
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindOther]
	}
	return kindNames[k]
}

// ParseKind looks up a kind by its mdast type name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindOther, false
}

// IsLeaf reports whether nodes of this kind never carry children.
func (k Kind) IsLeaf() bool {
	switch k {
	case KindText, KindInlineCode, KindCode, KindImage, KindFootnoteReference,
		KindBreak, KindHTML, KindThematicBreak:
		return true
	}
	return false
}
