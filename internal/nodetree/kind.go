package nodetree

// Kind identifies a block type. Slot is the structural region a layout
// exposes; every other kind is a placeable block.
type Kind string

// Block kinds.
const (
	KindSlot         Kind = "slot"
	KindLayout       Kind = "layout"
	KindSection      Kind = "section"
	KindCard         Kind = "card"
	KindDialog       Kind = "dialog"
	KindDrawer       Kind = "drawer"
	KindPopover      Kind = "popover"
	KindHeader       Kind = "header"
	KindFooter       Kind = "footer"
	KindPageHeader   Kind = "page-header"
	KindBreadcrumb   Kind = "breadcrumb"
	KindToolbar      Kind = "toolbar"
	KindButtonGroup  Kind = "button-group"
	KindForm         Kind = "form"
	KindField        Kind = "field"
	KindFormActions  Kind = "form-actions"
	KindAlert        Kind = "alert"
	KindCallout      Kind = "callout"
	KindStatCard     Kind = "stat-card"
	KindEmptyState   Kind = "empty-state"
	KindDataTable    Kind = "data-table"
	KindCodeBlock    Kind = "code-block"
	KindList         Kind = "list"
	KindSkeleton     Kind = "skeleton"
	KindTable        Kind = "table"
	KindCommandPanel Kind = "command-panel"
)

// Category groups kinds for placement rules.
type Category string

// Categories.
const (
	CategorySlot       Category = "slot"
	CategoryLayout     Category = "layout"
	CategoryPage       Category = "page"
	CategoryNavigation Category = "navigation"
	CategoryForm       Category = "form"
	CategoryContent    Category = "content"
	CategoryOverlay    Category = "overlay"
)

var categories = map[Kind]Category{
	KindSlot:         CategorySlot,
	KindLayout:       CategoryLayout,
	KindSection:      CategoryLayout,
	KindCard:         CategoryLayout,
	KindDialog:       CategoryLayout,
	KindDrawer:       CategoryLayout,
	KindPopover:      CategoryLayout,
	KindHeader:       CategoryPage,
	KindFooter:       CategoryPage,
	KindPageHeader:   CategoryPage,
	KindBreadcrumb:   CategoryNavigation,
	KindToolbar:      CategoryNavigation,
	KindButtonGroup:  CategoryNavigation,
	KindForm:         CategoryForm,
	KindField:        CategoryForm,
	KindFormActions:  CategoryForm,
	KindAlert:        CategoryContent,
	KindCallout:      CategoryContent,
	KindStatCard:     CategoryContent,
	KindEmptyState:   CategoryContent,
	KindDataTable:    CategoryContent,
	KindCodeBlock:    CategoryContent,
	KindList:         CategoryContent,
	KindSkeleton:     CategoryContent,
	KindTable:        CategoryContent,
	KindCommandPanel: CategoryOverlay,
}

// Kinds returns every known kind except slot, in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindLayout, KindSection, KindCard, KindDialog, KindDrawer, KindPopover,
		KindHeader, KindFooter, KindPageHeader,
		KindBreadcrumb, KindToolbar, KindButtonGroup,
		KindForm, KindField, KindFormActions,
		KindAlert, KindCallout, KindStatCard, KindEmptyState, KindDataTable,
		KindCodeBlock, KindList, KindSkeleton, KindTable,
		KindCommandPanel,
	}
}

// Known reports whether k is a recognised kind.
func (k Kind) Known() bool {
	_, ok := categories[k]
	return ok
}

// Category returns the category of k. Unknown kinds are content.
func (k Kind) Category() Category {
	if c, ok := categories[k]; ok {
		return c
	}
	return CategoryContent
}

// CanAccept reports whether a node of kind parent may hold a child of
// category child.
//
//	slot               anything but slots
//	layout containers  anything but slots and page chrome
//	header, footer     navigation and content
//	form               form parts and content

//	everything else    nothing
func CanAccept(parent Kind, child Category) bool {
	if child == CategorySlot {
		return false
	}
	switch parent {
	case KindSlot:
		return true
	case KindHeader, KindFooter, KindPageHeader:
		return child == CategoryNavigation || child == CategoryContent
	case KindForm:
		return child == CategoryForm || child == CategoryContent
	}
	switch parent.Category() {
	case CategoryLayout:
		return child != CategoryPage
	}
	return false
}

// IsContainer reports whether k accepts any children at all.
func IsContainer(k Kind) bool {
	for _, c := range []Category{CategoryLayout, CategoryPage, CategoryNavigation, CategoryForm, CategoryContent, CategoryOverlay} {
		if CanAccept(k, c) {
			return true
		}
	}
	return false
}
