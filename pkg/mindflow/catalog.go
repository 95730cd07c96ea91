package mindflow

import "sort"

// EntityName is the logical name of a backend entity.
type EntityName string

// Angel Coaching entities.
const (
	CoachProfile           EntityName = "CoachProfile"
	CoacheeProfile         EntityName = "CoacheeProfile"
	TimeSlot               EntityName = "TimeSlot"
	Appointment            EntityName = "Appointment"
	Message                EntityName = "Message"
	Document               EntityName = "Document"
	CoachingAgreement      EntityName = "CoachingAgreement"
	CoacheeAgreement       EntityName = "CoacheeAgreement"
	CoacheeMatchingProfile EntityName = "CoacheeMatchingProfile"
	User                   EntityName = "User"
)

// Standard MindFlow platform entities.
const (
	Board               EntityName = "Board"
	Session             EntityName = "Session"
	ProjectDeployment   EntityName = "ProjectDeployment"
	AIPrompt            EntityName = "AIPrompt"
	EntitySchema        EntityName = "EntitySchema"
	FileStructure       EntityName = "FileStructure"
	ConversationHistory EntityName = "ConversationHistory"
	GenericEntity       EntityName = "entity"
	Process             EntityName = "Process"
	DevelopmentClass    EntityName = "DevelopmentClass"
	CodeOptimization    EntityName = "CodeOptimization"
	CodeTemplate        EntityName = "CodeTemplate"
	TestCase            EntityName = "TestCase"
	Persona             EntityName = "Persona"
	UseCase             EntityName = "UseCase"
	BestPractice        EntityName = "BestPractice"
	Capability          EntityName = "Capability"
	Translation         EntityName = "Translation"
	Service             EntityName = "Service"
	ServiceSubscription EntityName = "ServiceSubscription"
	ServiceUsage        EntityName = "ServiceUsage"
	PagePermission      EntityName = "PagePermission"
	SubscriptionPlan    EntityName = "SubscriptionPlan"
	UserSubscription    EntityName = "UserSubscription"
	TokenUsage          EntityName = "TokenUsage"
	GeneratedFile       EntityName = "GeneratedFile"
	Log                 EntityName = "Log"
	PreviewStandardFile EntityName = "PreviewStandardFile"
)

type entityDef struct {
	slug    string
	aliases []string
}

var catalog = map[EntityName]entityDef{
	CoachProfile:           {slug: "coachprofile"},
	CoacheeProfile:         {slug: "coacheeprofile"},
	TimeSlot:               {slug: "timeslot"},
	Appointment:            {slug: "appointment"},
	Message:                {slug: "message"},
	Document:               {slug: "document"},
	CoachingAgreement:      {slug: "coachingagreement"},
	CoacheeAgreement:       {slug: "coacheeagreement"},
	CoacheeMatchingProfile: {slug: "coacheematchingprofile"},
	User:                   {slug: "user"},

	Board:               {slug: "board"},
	Session:             {slug: "session"},
	ProjectDeployment:   {slug: "projectdeployment"},
	AIPrompt:            {slug: "aiprompt"},
	EntitySchema:        {slug: "entityschema"},
	FileStructure:       {slug: "filestructure"},
	ConversationHistory: {slug: "conversationhistory"},
	GenericEntity:       {slug: "entity"},
	Process:             {slug: "process"},
	DevelopmentClass:    {slug: "developmentclass"},
	CodeOptimization:    {slug: "codeoptimization"},
	CodeTemplate:        {slug: "codetemplate"},
	TestCase:            {slug: "testcase"},
	Persona:             {slug: "persona"},
	UseCase:             {slug: "usecase"},
	BestPractice:        {slug: "bestpractice"},
	Capability:          {slug: "capability"},
	Translation:         {slug: "translation"},
	Service:             {slug: "service"},
	ServiceSubscription: {slug: "servicesubscription"},
	ServiceUsage:        {slug: "serviceusage"},
	PagePermission:      {slug: "pagepermission"},
	SubscriptionPlan:    {slug: "subscriptionplan"},
	UserSubscription:    {slug: "usersubscription"},
	TokenUsage:          {slug: "tokenusage"},
	GeneratedFile:       {slug: "generated_file", aliases: []string{"generated_file"}},
	Log:                 {slug: "log", aliases: []string{"log"}},
	PreviewStandardFile: {slug: "preview_standard_files", aliases: []string{"preview_standard_files"}},
}

// aliasIndex maps legacy names to their entity.
var aliasIndex = func() map[string]EntityName {
	idx := make(map[string]EntityName)
	for name, def := range catalog {
		for _, alias := range def.aliases {
			idx[alias] = name
		}
	}
	return idx
}()

// Slug returns the URL slug for the entity, or "" for an unknown name.
func (n EntityName) Slug() string {
	return catalog[n].slug
}

// Valid reports whether n is in the catalog.
func (n EntityName) Valid() bool {
	_, ok := catalog[n]
	return ok
}

// ParseEntityName resolves a catalog name or legacy alias.
func ParseEntityName(s string) (EntityName, bool) {
	if name := EntityName(s); name.Valid() {
		return name, true
	}
	name, ok := aliasIndex[s]
	return name, ok
}

// EntityNames returns every catalog name, sorted.
func EntityNames() []EntityName {
	names := make([]EntityName, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
