package topics

import "sync"

var (
	builtinOnce sync.Once
	builtin     *Dictionary
)

// Builtin returns the process-wide default dictionary
func Builtin() *Dictionary {
	builtinOnce.Do(func() {
		builtin = NewDictionary(builtinProfiles()...)
	})
	return builtin
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			Name:          AI,
			Aliases:       []string{"ai", "artificial intelligence", "machine learning", "ml", "llm", "llms", "chatgpt", "gpt", "deep learning", "nlp", "generative ai"},
			Triggers:      []string{"ai", "artificial intelligence", "chatgpt", "gpt", "machine learning", "ml", "llm"},
			Subreddits:    []string{"MachineLearning", "artificial", "OpenAI", "LocalLLaMA", "ChatGPT"},
			Hashtags:      []string{"#AI", "#MachineLearning", "#LLM", "#ChatGPT"},
			SearchTerms:   []string{"AI startup", "machine learning business", "AI automation", "LLM applications"},
			TechAdditions: []string{"Python", "TensorFlow"},
			Templates: []Template{
				{Title: "{Primary} Copilot", Description: "An AI assistant that drafts, reviews and automates routine {primary} work so small teams can focus on {secondary} decisions."},
				{Title: "{Primary} Model Monitor", Description: "A monitoring service that tracks the accuracy and cost of {primary} models in production and alerts teams when {secondary} quality drifts."},
			},
			Discussions: []string{
				"AI-powered {primary} solutions - what's missing?",
				"Building {primary} with machine learning - need validation",
				"{primary} automation using AI - market opportunities",
			},
			Posts: []string{
				"Just discovered how {primary} can automate 80% of repetitive business tasks. The ROI potential is insane! Who else is building AI-first solutions?",
				"Hot take: The {primary} market is still in its infancy. Massive opportunity for simple AI tools that actual humans can use. Thread below",
				"Problem: Most {primary} solutions are built for data scientists, not business users. Who's working on AI tools with zero learning curve?",
				"Spent $50K testing {primary} platforms this quarter. Key insight: integration beats features every time.",
			},
			Accounts: []Account{
				{Username: "AndrewYNg", Verified: true, Tier: "high"},
				{Username: "karpathy", Verified: true, Tier: "high"},
				{Username: "AIResearcher", Tier: "medium"},
				{Username: "MLEngineer", Tier: "medium"},
			},
		},
		{
			Name:        WebDevelopment,
			Aliases:     []string{"web development", "web dev", "webdev", "web", "website", "websites", "web app", "backend", "full stack", "fullstack", "javascript", "react", "nodejs"},
			Triggers:    []string{"web", "website", "backend", "react", "javascript", "html", "css"},
			Subreddits:  []string{"webdev", "Frontend", "reactjs", "javascript", "node"},
			Hashtags:    []string{"#WebDev", "#JavaScript", "#FullStack"},
			SearchTerms: []string{"web development tools", "developer productivity", "web app ideas"},
			Templates: []Template{
				{Title: "{Primary} Developer Portal", Description: "A hosted portal that gives developers ready-made {primary} components, documentation and {secondary} integrations in one place."},
				{Title: "{Primary} Site Builder", Description: "A no-code builder for launching fast {primary} websites with built-in analytics and {secondary} tooling."},
			},
			Discussions: []string{
				"{primary} web platform ideas for developers",
				"Full-stack {primary} application concepts",
				"Frontend tools for {primary} - gap analysis",
			},
			Posts: []string{
				"The {primary} tooling space is fragmented. Devs are juggling 15+ tools just to ship a simple feature. Huge opportunity for unified dev platforms",
				"Just surveyed 200 developers about {primary} pain points. Top issue: context switching between tools.",
				"Unpopular opinion: {primary} frameworks are getting too complex. There's a market for simple, fast tools that prioritize DX.",
			},
			Accounts: []Account{
				{Username: "kentcdodds", Verified: true, Tier: "high"},
				{Username: "addyosmani", Verified: true, Tier: "high"},
				{Username: "WebDevExpert", Tier: "medium"},
				{Username: "FullStackDev", Tier: "medium"},
			},
		},
		{
			Name:          MobileApp,
			Aliases:       []string{"mobile app", "mobile apps", "mobile", "android", "ios", "iphone", "flutter", "react native"},
			Triggers:      []string{"mobile", "android", "ios", "iphone", "flutter", "app store"},
			Subreddits:    []string{"androiddev", "iOSProgramming", "FlutterDev", "reactnative", "AppIdeas"},
			Hashtags:      []string{"#MobileApp", "#iOS", "#Android", "#Flutter"},
			SearchTerms:   []string{"mobile app ideas", "app development", "mobile solutions"},
			TechAdditions: []string{"React Native"},
			Templates: []Template{
				{Title: "{Primary} Companion App", Description: "A mobile companion app that lets users manage {primary} on the go with offline support and {secondary} reminders."},
				{Title: "{Primary} Field Kit", Description: "A mobile toolkit for teams working away from a desk, combining {primary} checklists, photo capture and {secondary} sync."},
			},
			Discussions: []string{
				"{primary} mobile app concepts that need building",
				"iOS/Android {primary} solutions - market research",
				"Cross-platform {primary} app ideas",
			},
			Posts: []string{
				"Mobile {primary} apps are solving the wrong problems. Users don't need more features, they need better UX.",
				"App Store research: 90% of {primary} apps have terrible onboarding. Massive opportunity for apps that get users to value in <30 seconds.",
			},
			Accounts: []Account{
				{Username: "FlutterDev", Verified: true, Tier: "high"},
				{Username: "iOSDeveloper", Tier: "medium"},
				{Username: "AndroidDev", Tier: "medium"},
			},
		},
		{
			Name:        Startup,
			Aliases:     []string{"startup", "startups", "business", "businesses", "entrepreneur", "entrepreneurs", "entrepreneurship", "founder", "founders", "venture", "small business"},
			Triggers:    []string{"startup", "business", "entrepreneur", "founder"},
			Subreddits:  []string{"startups", "entrepreneur", "Startup_Ideas", "SideProject", "indiehackers", "smallbusiness"},
			Hashtags:    []string{"#Startup", "#Entrepreneur", "#StartupLife", "#Innovation"},
			SearchTerms: []string{"startup ideas", "business opportunities", "market validation", "startup problems"},
			Templates: []Template{
				{Title: "{Primary} Launch Toolkit", Description: "A guided workspace that helps early-stage founders validate {primary} concepts, run {secondary} experiments and share progress with advisors."},
				{Title: "{Primary} Customer Discovery Hub", Description: "A lightweight research tool for running {primary} customer interviews, tagging pain points and turning {secondary} insights into a roadmap."},
			},
			Discussions: []string{
				"{primary} startup ideas - market validation needed",
				"Building a {primary} business - what problems to solve?",
				"{primary} venture opportunities this year",
			},
			Posts: []string{
				"{primary} market insight: SMBs are underserved. They need enterprise features at startup prices. Whoever cracks this wins big",
				"Just closed our Series A for a {primary} platform! Key lesson: focus on one problem, solve it 10x better than competitors.",
				"The {primary} space is ripe for disruption. Incumbents are slow, expensive and user-hostile.",
			},
			Accounts: []Account{
				{Username: "paulg", Verified: true, Tier: "high"},
				{Username: "naval", Verified: true, Tier: "high"},
				{Username: "StartupFounder", Tier: "medium"},
				{Username: "TechEntrepreneur", Tier: "low"},
			},
		},
		{
			Name:        SaaS,
			Aliases:     []string{"saas", "software as a service", "b2b", "subscription", "software"},
			Triggers:    []string{"saas", "software", "subscription", "b2b"},
			Subreddits:  []string{"SaaS", "indiehackers", "SideProject", "microsaas"},
			Hashtags:    []string{"#SaaS", "#B2B", "#MRR", "#ProductManagement"},
			SearchTerms: []string{"SaaS ideas", "B2B solutions", "software business", "subscription model"},
			Templates: []Template{
				{Title: "{Primary} Subscription Manager", Description: "A B2B SaaS that centralizes {primary} subscriptions, renewals and {secondary} usage reporting for finance and ops teams."},
				{Title: "{Primary} Onboarding Automator", Description: "A SaaS add-on that automates customer onboarding for {primary} products with in-app guides and {secondary} health scoring."},
			},
			Discussions: []string{
				"{primary} SaaS ideas - would you pay for this?",
				"Micro-SaaS opportunities around {primary}",
				"{primary} software solution - pricing feedback wanted",
			},
			Posts: []string{
				"{primary} SaaS founders: what's your churn looking like? Most teams I talk to underinvest in onboarding.",
				"Hot take: the next wave of {primary} SaaS will be vertical, not horizontal. Niche down and own a workflow.",
			},
			Accounts: []Account{
				{Username: "SaaStr", Verified: true, Tier: "high"},
				{Username: "SaaSFounder", Tier: "medium"},
				{Username: "B2BExpert", Tier: "medium"},
			},
		},
		{
			Name:          Fintech,
			Aliases:       []string{"fintech", "finance", "financial", "payments", "payment", "banking", "crypto", "cryptocurrency", "blockchain", "trading", "investing", "defi", "accounting"},
			Triggers:      []string{"fintech", "finance", "payment", "payments", "banking", "crypto", "blockchain", "invest", "investing", "money"},
			Subreddits:    []string{"fintech", "investing", "CryptoCurrency", "personalfinance"},
			Hashtags:      []string{"#Fintech", "#Payments", "#DeFi", "#Banking"},
			SearchTerms:   []string{"fintech opportunities", "payment solutions", "banking innovation"},
			TechAdditions: []string{"PostgreSQL", "Stripe API"},
			Templates: []Template{
				{Title: "{Primary} Cash Flow Planner", Description: "A forecasting tool that connects to bank feeds and projects {primary} cash flow so small companies can plan {secondary} spending."},
				{Title: "{Primary} Payments Reconciler", Description: "A service that matches {primary} payouts, invoices and bank transactions automatically and flags {secondary} discrepancies."},
			},
			Discussions: []string{
				"{primary} fintech ideas - regulatory hurdles?",
				"Payment pain points in {primary}",
				"{primary} financial technology gaps",
			},
			Posts: []string{
				"Reconciling {primary} payments by hand still eats 10+ hours a week for most SMBs. Why is this not solved yet?",
				"The {primary} fintech stack is finally composable. Perfect timing for focused tools on top of open banking.",
			},
			Accounts: []Account{
				{Username: "stripe", Verified: true, Tier: "high"},
				{Username: "FintechFounder", Tier: "medium"},
				{Username: "PaymentExpert", Tier: "medium"},
			},
		},
		{
			Name:        Frontend,
			Aliases:     []string{"frontend", "front end", "front-end", "ui", "ux", "user interface", "design system", "css"},
			Triggers:    []string{"frontend", "front end", "ui", "ux", "design system"},
			Subreddits:  []string{"Frontend", "reactjs", "css", "web_design"},
			Hashtags:    []string{"#Frontend", "#UI", "#UX", "#CSS"},
			SearchTerms: []string{"frontend frameworks", "UI component library", "frontend tooling"},
			Templates: []Template{
				{Title: "{Primary} Component Library", Description: "An accessible, themeable component library for {primary} products with design tokens and {secondary} documentation."},
				{Title: "{Primary} UX Audit Tool", Description: "A tool that crawls {primary} interfaces, scores usability issues and suggests {secondary} fixes with before/after previews."},
			},
			Discussions: []string{
				"{primary} UI tooling - what do you wish existed?",
				"Design systems for {primary} teams",
				"{primary} frontend performance pain points",
			},
			Posts: []string{
				"Every {primary} team rebuilds the same UI components. A shared, accessible kit would save months.",
				"Unpopular opinion: {primary} UX problems are mostly onboarding problems.",
			},
			Accounts: []Account{
				{Username: "chriscoyier", Verified: true, Tier: "high"},
				{Username: "FrontendMentor", Verified: true, Tier: "medium"},
				{Username: "ReactDeveloper", Tier: "medium"},
			},
		},
		{
			Name:          Gaming,
			Aliases:       []string{"gaming", "game", "games", "game development", "gamedev", "esports", "unity", "unreal"},
			Triggers:      []string{"game", "games", "gaming", "gamedev", "esports", "unity"},
			Subreddits:    []string{"gamedev", "IndieGaming", "gaming", "Unity3D"},
			Hashtags:      []string{"#GameDev", "#IndieDev", "#Gaming"},
			SearchTerms:   []string{"indie game ideas", "game development tools", "gaming community"},
			TechAdditions: []string{"Unity", "C#"},
			Templates: []Template{
				{Title: "{Primary} Playtest Platform", Description: "A platform that recruits players, records {primary} playtest sessions and summarizes {secondary} feedback for indie studios."},
				{Title: "{Primary} Community Hub", Description: "A community and event hub for {primary} players with tournaments, clips and {secondary} rewards."},
			},
			Discussions: []string{
				"{primary} game concepts - would you play this?",
				"Tools indie devs need for {primary}",
				"{primary} gaming community gaps",
			},
			Posts: []string{
				"Indie {primary} devs spend more time on marketing than on the game. Big gap for tools that automate community building.",
			},
			Accounts: []Account{
				{Username: "IndieGameDev", Tier: "medium"},
				{Username: "GameDesignDaily", Tier: "low"},
			},
		},
		{
			Name:        Health,
			Aliases:     []string{"health", "healthcare", "fitness", "wellness", "medical", "medicine", "mental health", "nutrition", "telehealth"},
			Triggers:    []string{"health", "healthcare", "fitness", "wellness", "medical", "patient", "patients"},
			Subreddits:  []string{"healthIT", "fitness", "HealthTech", "mentalhealth"},
			Hashtags:    []string{"#HealthTech", "#DigitalHealth", "#Wellness"},
			SearchTerms: []string{"digital health startup", "patient experience", "wellness apps"},
			Templates: []Template{
				{Title: "{Primary} Care Coordinator", Description: "A coordination tool that keeps patients, caregivers and clinicians aligned on {primary} plans with {secondary} reminders."},
				{Title: "{Primary} Wellness Tracker", Description: "A privacy-first tracker that turns {primary} habits into simple weekly insights and {secondary} goals."},
			},
			Discussions: []string{
				"{primary} health platform ideas",
				"Patient pain points with {primary}",
				"{primary} wellness app market research",
			},
			Posts: []string{
				"Most {primary} apps lose 80% of users in the first month. Retention is the real product problem in digital health.",
			},
			Accounts: []Account{
				{Username: "DigitalHealthNow", Tier: "medium"},
				{Username: "HealthTechVC", Tier: "medium"},
			},
		},
		{
			Name:        Education,
			Aliases:     []string{"education", "edtech", "online learning", "e-learning", "course", "courses", "teaching", "teachers", "students", "tutoring"},
			Triggers:    []string{"education", "online learning", "course", "courses", "teach", "teaching", "students", "tutoring"},
			Subreddits:  []string{"edtech", "education", "Teachers", "learnprogramming"},
			Hashtags:    []string{"#EdTech", "#Education", "#Learning"},
			SearchTerms: []string{"edtech opportunities", "online course platform", "student engagement"},
			Templates: []Template{
				{Title: "{Primary} Learning Path Builder", Description: "A course builder that assembles personalized {primary} learning paths and tracks {secondary} progress for each student."},
				{Title: "{Primary} Tutor Marketplace", Description: "A marketplace that matches learners with vetted {primary} tutors and handles scheduling and {secondary} payments."},
			},
			Discussions: []string{
				"{primary} edtech ideas - teachers, what would help?",
				"Online learning gaps in {primary}",
				"{primary} course platform feedback",
			},
			Posts: []string{
				"Teachers are drowning in {primary} admin work. Tools that give them back an hour a day will win.",
			},
			Accounts: []Account{
				{Username: "EdTechInsider", Tier: "medium"},
				{Username: "TeacherTools", Tier: "low"},
			},
		},
		{
			Name:        Productivity,
			Aliases:     []string{"productivity", "automation", "workflow", "workflows", "task management", "no-code", "nocode", "remote work"},
			Triggers:    []string{"productivity", "automation", "automate", "workflow", "workflows"},
			Subreddits:  []string{"productivity", "automation", "nocode", "gtd"},
			Hashtags:    []string{"#Productivity", "#Automation", "#NoCode"},
			SearchTerms: []string{"productivity tools", "workflow automation", "no-code automation"},
			Templates: []Template{
				{Title: "{Primary} Workflow Automator", Description: "A no-code automation builder that connects the tools used for {primary} and removes repetitive {secondary} steps."},
				{Title: "{Primary} Focus Planner", Description: "A planner that blocks time for {primary} work, batches interruptions and reports weekly {secondary} trends."},
			},
			Discussions: []string{
				"{primary} automation ideas - what do you still do by hand?",
				"Productivity tools for {primary} teams",
				"{primary} workflow pain points",
			},
			Posts: []string{
				"Just automated our whole {primary} workflow with 3 tools and a webhook. There should be one product for this.",
			},
			Accounts: []Account{
				{Username: "ProductivityHQ", Tier: "medium"},
				{Username: "NoCodeBuilder", Tier: "low"},
			},
		},
		{
			Name:        Default,
			Subreddits:  []string{"technology", "SideProject", "business"},
			Hashtags:    []string{"#Tech", "#Innovation", "#Startup", "#Business"},
			SearchTerms: []string{"tech trends", "innovation opportunities", "digital transformation"},
			Templates: []Template{
				{Title: "{Primary} Management Platform", Description: "A comprehensive platform that helps small businesses organize {primary} operations and automate {secondary} workflows."},
				{Title: "AI-Powered {Primary} Assistant", Description: "An AI assistant that helps teams analyze {primary} data and optimize their {secondary} processes."},
				{Title: "{Primary} Connect", Description: "A mobile app that connects {primary} professionals with {secondary} solutions and trusted service providers."},
				{Title: "{Primary} Insights Dashboard", Description: "A dashboard that provides {primary} analytics and {secondary} insights for decision makers."},
				{Title: "{Primary} Marketplace", Description: "A marketplace that matches {primary} service providers with businesses needing {secondary} solutions."},
			},
			Discussions: []string{
				"{primary} ideas - what problems are worth solving?",
				"Looking for feedback on a {primary} concept",
				"{primary} market gaps nobody talks about",
			},
			Posts: []string{
				"The {primary} market is undergoing massive transformation. Early movers who solve real problems will dominate",
				"Just analyzed 100+ {primary} solutions. Common gap: they're built for power users, not everyday people.",
				"Looking for {primary} recommendations for a 50-person company. What's your go-to?",
				"Market prediction: {primary} will be a $10B+ market by 2030.",
				"Founder insight: we pivoted our {primary} startup 3 times before finding PMF. Talk to customers more, build features less.",
			},
			Accounts: []Account{
				{Username: "TechCrunch", Verified: true, Tier: "high"},
				{Username: "TechInnovator", Tier: "medium"},
				{Username: "FutureTech", Tier: "low"},
			},
		},
	}
}
