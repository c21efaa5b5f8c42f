package gateway

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"pgrkam-assistant/utils"
	"pgrkam-assistant/work-flows/client"
	"pgrkam-assistant/work-flows/errs"
	"pgrkam-assistant/work-flows/i18n"
	"pgrkam-assistant/work-flows/managers"
	"pgrkam-assistant/work-flows/models"
	"pgrkam-assistant/work-flows/services"
	"pgrkam-assistant/work-flows/speech"
	"pgrkam-assistant/work-flows/storage"

	"github.com/fatih/color"
)

// Dependencies are the components the orchestrator drives. All are required.
type Dependencies struct {
	Client       client.Client
	Store        storage.Store
	Auth         *services.AuthState
	Accounts     *services.AccountService
	Profile      *services.ProfileManager
	Sessions     *services.SessionList
	Conversation *managers.ConversationManager
	Speech       *speech.Bridge
	I18n         *i18n.Provider
	ExportDir    string
}

// ChatbotOrchestrator is the interactive terminal front end. Lines starting
// with "/" are commands; anything else is sent to the assistant.
type ChatbotOrchestrator struct {
	Dependencies

	in  *bufio.Reader
	out io.Writer
	ctx context.Context
	now func() time.Time

	sessionActive bool
}

func NewChatbotOrchestrator(deps Dependencies, in io.Reader, out io.Writer) *ChatbotOrchestrator {
	co := &ChatbotOrchestrator{
		Dependencies: deps,
		in:           bufio.NewReader(in),
		out:          out,
		ctx:          context.Background(),
		now:          time.Now,
	}
	co.wireEvents()
	return co
}

func (co *ChatbotOrchestrator) t(key string) string {
	return co.I18n.Translate(key)
}

func (co *ChatbotOrchestrator) wireEvents() {
	co.Conversation.OnSessionBound(func(sessionID string) {
		co.rememberSession(sessionID)
		utils.PrintInfo(co.out, fmt.Sprintf("%s %s", co.t("sessionStarted"), sessionID))
	})
	co.Conversation.OnAssistantMessage(co.Speech.NotifyAssistantMessage)
	co.Conversation.OnReset(co.Speech.StopAll)

	co.Auth.OnLogout(func() {
		co.Conversation.NewChat()
		if err := co.Store.Delete(storage.KeyLastSession); err != nil {
			utils.Warn("failed to forget last session", "error", err.Error())
		}
	})

	co.I18n.OnChange(func(lang models.Language) {
		co.Speech.SetLocale(lang.Locale())
	})
	co.Speech.SetLocale(co.I18n.Locale())

	co.Speech.OnTranscript(func(text string) {
		magenta := color.New(color.FgMagenta)
		magenta.Fprintf(co.out, "🎤 %s\n", text)
	})
	co.Speech.OnError(func(err error) {
		key := "speechSynthesisError"
		if errs.Is(err, errs.KindRecognition) {
			key = "speechRecognitionError"
		}
		utils.PrintError(co.out, fmt.Sprintf("%s: %s", co.t(key), errs.UserMessage(err, err.Error())))
	})
}

// Run reads commands until /quit or end of input.
func (co *ChatbotOrchestrator) Run(ctx context.Context) error {
	co.ctx = ctx
	co.sessionActive = true
	defer co.Speech.StopAll()

	PrintHeader(co.out, co.t("appTitle"), co.t("chatPlaceholder"))

	if co.Auth.IsAuthenticated() {
		co.onLoggedIn()
	} else {
		utils.PrintInfo(co.out, co.t("loginRequired")+" (/login, /register)")
	}

	for co.sessionActive {
		if err := ctx.Err(); err != nil {
			return err
		}

		PrintPrompt(co.out, co.promptLabel())
		line, err := co.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				co.endSession()
				return nil
			}
			return err
		}
		co.handleLine(line)
	}
	return nil
}

func (co *ChatbotOrchestrator) promptLabel() string {
	if co.Speech.IsListening() {
		return co.t("listening")
	}
	return string(co.I18n.Language())
}

func (co *ChatbotOrchestrator) readLine() (string, error) {
	line, err := co.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (co *ChatbotOrchestrator) ask(label string) (string, bool) {
	color.New(color.FgWhite).Fprintf(co.out, "➤ %s: ", label)
	line, err := co.readLine()
	if err != nil {
		return "", false
	}
	return line, true
}

func (co *ChatbotOrchestrator) confirm(question string) bool {
	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintln(co.out, question)
	answer, ok := co.ask(co.t("confirmYesNo"))
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

type command struct {
	name string
	args []string
}

// parseCommand splits "/open 2" into its name and arguments. ok is false
// for plain chat text.
func parseCommand(line string) (command, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return command{}, false
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}

var publicCommands = map[string]bool{
	"login":    true,
	"register": true,
	"forgot":   true,
	"reset":    true,
	"lang":     true,
	"help":     true,
	"quit":     true,
	"exit":     true,
}

func (co *ChatbotOrchestrator) handleLine(line string) {
	if line == "" {
		return
	}

	cmd, isCommand := parseCommand(line)
	protected := !isCommand || !publicCommands[cmd.name]
	if protected && !co.Auth.IsAuthenticated() {
		utils.PrintInfo(co.out, co.t("loginRequired"))
		if !co.login() {
			return
		}
	}

	if !isCommand {
		co.sendMessage(line)
		return
	}

	switch cmd.name {
	case "login":
		co.login()
	case "register":
		co.register()
	case "forgot":
		co.forgotPassword()
	case "reset":
		co.resetPassword()
	case "logout":
		co.logout()
	case "new":
		co.Conversation.NewChat()
		co.Conversation.Activate()
		utils.PrintSuccess(co.out, co.t("newChat"))
	case "history":
		co.showSessions()
	case "open":
		co.openSession(cmd.args)
	case "resume":
		co.resumeSession()
	case "delete":
		co.deleteSession(cmd.args)
	case "profile":
		co.showProfile()
	case "edit":
		co.editProfile()
	case "password":
		co.changePassword()
	case "delete-account":
		co.deleteAccount()
	case "lang":
		co.setLanguage(cmd.args)
	case "listen":
		co.listen()
	case "speak":
		co.speakLast()
	case "stop":
		co.Speech.Stop()
		utils.PrintInfo(co.out, co.t("stopped"))
	case "autospeak":
		co.setAutoSpeak(cmd.args)
	case "translate":
		co.translateLast()
	case "export":
		co.exportConversation()
	case "stats":
		co.showStats()
	case "legacy":
		co.showLegacyHistory()
	case "help":
		PrintHelp(co.out)
	case "quit", "exit":
		co.endSession()
	default:
		utils.PrintWarning(co.out, co.t("unknownCommand"))
	}
}

func (co *ChatbotOrchestrator) sendMessage(text string) {
	utils.PrintInfo(co.out, co.t("thinking"))

	msg, err := co.Conversation.SendMessage(co.ctx, text)
	switch {
	case errors.Is(err, managers.ErrConversationReset), errors.Is(err, errs.ErrEmptyMessage):
		return
	case errors.Is(err, errs.ErrBusy):
		utils.PrintWarning(co.out, co.t("thinking"))
		return
	case err != nil:
		if errs.Is(err, errs.KindAuth) {
			utils.PrintWarning(co.out, co.t("loginRequired"))
		}
		printErrorMessage(co.out, msg.Content)
		return
	}
	printAssistantMessage(co.out, msg.Content)
}

// Account

func (co *ChatbotOrchestrator) onLoggedIn() {
	if _, err := co.Profile.Fetch(co.ctx); err != nil {
		utils.PrintWarning(co.out, fmt.Sprintf("%s: %s", co.t("profileLoadError"), errs.UserMessage(err, err.Error())))
	}
	co.Conversation.Activate()
}

func (co *ChatbotOrchestrator) login() bool {
	email, ok := co.ask(co.t("email"))
	if !ok {
		return false
	}
	password, ok := co.ask(co.t("password"))
	if !ok {
		return false
	}

	if err := co.Accounts.Login(co.ctx, email, password); err != nil {
		co.printFailure("loginFailed", err)
		return false
	}
	utils.PrintSuccess(co.out, co.t("loginSuccess"))
	co.onLoggedIn()
	return true
}

func (co *ChatbotOrchestrator) register() {
	name, ok := co.ask(co.t("name"))
	if !ok {
		return
	}
	email, ok := co.ask(co.t("email"))
	if !ok {
		return
	}
	password, ok := co.ask(co.t("password"))
	if !ok {
		return
	}
	confirm, ok := co.ask(co.t("confirmPassword"))
	if !ok {
		return
	}

	if err := co.Accounts.Register(co.ctx, name, email, password, confirm); err != nil {
		co.printFailure("registrationFailed", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("registrationSuccess"))
}

func (co *ChatbotOrchestrator) forgotPassword() {
	email, ok := co.ask(co.t("email"))
	if !ok {
		return
	}
	if err := co.Accounts.ForgotPassword(co.ctx, email); err != nil {
		co.printFailure("errorOccurred", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("resetLinkSent"))
}

func (co *ChatbotOrchestrator) resetPassword() {
	token, ok := co.ask(co.t("resetToken"))
	if !ok {
		return
	}
	password, ok := co.ask(co.t("newPassword"))
	if !ok {
		return
	}
	confirm, ok := co.ask(co.t("confirmPassword"))
	if !ok {
		return
	}
	if err := co.Accounts.ResetPassword(co.ctx, token, password, confirm); err != nil {
		co.printFailure("errorOccurred", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("passwordResetDone"))
}

func (co *ChatbotOrchestrator) logout() {
	if err := co.Accounts.Logout(); err != nil {
		utils.Error(err, "failed to clear saved token")
	}
	utils.PrintSuccess(co.out, co.t("loggedOut"))
}

// printFailure reports err under the heading key. Client-side validation
// errors use their own localized text.
func (co *ChatbotOrchestrator) printFailure(key string, err error) {
	switch {
	case errors.Is(err, services.ErrPasswordMismatch):
		utils.PrintError(co.out, co.t("passwordsDoNotMatch"))
	case errors.Is(err, services.ErrPasswordTooShort):
		utils.PrintError(co.out, co.t("passwordTooShort"))
	default:
		utils.PrintError(co.out, fmt.Sprintf("%s: %s", co.t(key), errs.UserMessage(err, co.t("errorOccurred"))))
	}
}

// Sessions

func (co *ChatbotOrchestrator) rememberSession(sessionID string) {
	if err := co.Store.Set(storage.KeyLastSession, sessionID); err != nil {
		utils.Warn("failed to remember session", "session_id", sessionID, "error", err.Error())
	}
}

func (co *ChatbotOrchestrator) showSessions() {
	co.Speech.StopAll()
	yellow := color.New(color.FgYellow, color.Bold)
	white := color.New(color.FgWhite)
	cyan := color.New(color.FgCyan)

	utils.PrintInfo(co.out, co.t("loading"))
	if err := co.Sessions.Fetch(co.ctx); err != nil {
		co.printFailure("sessionsLoadError", err)
		return
	}

	yellow.Fprintf(co.out, "\n📜 %s\n", co.t("chatHistory"))
	if co.Sessions.IsEmpty() {
		white.Fprintln(co.out, co.t("noConversations"))
		white.Fprintln(co.out, co.t("startNewChatPrompt"))
		return
	}

	now := co.now()
	current := co.Conversation.GetSessionId()
	for i, s := range co.Sessions.Sessions() {
		marker := " "
		if s.SessionID == current {
			marker = "*"
		}
		cyan.Fprintf(co.out, "%s%d. %s", marker, i+1, s.Title)
		white.Fprintf(co.out, "  (%s)\n", services.FormatRelativeTime(s.UpdatedTime(), now, co.I18n))
		if s.Preview != "" {
			white.Fprintf(co.out, "    %s\n", s.Preview)
		}
	}
}

// resolveSession maps a 1-based list position or a raw id to a session id.
func (co *ChatbotOrchestrator) resolveSession(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil {
		if s, ok := co.Sessions.At(n - 1); ok {
			return s.SessionID
		}
	}
	return arg
}

func (co *ChatbotOrchestrator) openSession(args []string) {
	if len(args) == 0 {
		utils.PrintWarning(co.out, "/open <n|id>")
		return
	}
	co.loadSession(co.resolveSession(args[0]))
}

func (co *ChatbotOrchestrator) resumeSession() {
	sessionID, ok, err := co.Store.Get(storage.KeyLastSession)
	if err != nil || !ok || sessionID == "" {
		utils.PrintInfo(co.out, co.t("noActiveSession"))
		return
	}
	co.loadSession(sessionID)
}

func (co *ChatbotOrchestrator) loadSession(sessionID string) {
	if err := co.Conversation.LoadSession(co.ctx, sessionID); err != nil {
		co.printFailure("sessionLoadError", err)
		return
	}
	co.rememberSession(sessionID)

	messages := co.Conversation.Messages()
	if len(messages) == 0 {
		utils.PrintInfo(co.out, co.t("noMessages"))
		return
	}
	for _, msg := range messages {
		if msg.Role == models.MessageRoleUser {
			printUserMessage(co.out, msg.Content)
		} else {
			printAssistantMessage(co.out, msg.Content)
		}
	}
}

func (co *ChatbotOrchestrator) deleteSession(args []string) {
	if len(args) == 0 {
		utils.PrintWarning(co.out, "/delete <n>")
		return
	}
	if co.Sessions.State() != services.ListLoaded {
		if err := co.Sessions.Fetch(co.ctx); err != nil {
			co.printFailure("sessionsLoadError", err)
			return
		}
	}

	target, err := co.Sessions.RequestDelete(co.resolveSession(args[0]))
	if err != nil {
		co.printFailure("deleteSessionError", err)
		return
	}

	question := fmt.Sprintf("%s\n%s \"%s\"? %s", co.t("deleteConversation"), co.t("deleteConversationConfirm"), target.Title, co.t("cannotBeUndone"))
	if !co.confirm(question) {
		co.Sessions.CancelDelete()
		utils.PrintInfo(co.out, co.t("deleteCancelled"))
		return
	}

	if err := co.Sessions.ConfirmDelete(co.ctx); err != nil {
		co.printFailure("deleteSessionError", err)
		return
	}
	if last, ok, _ := co.Store.Get(storage.KeyLastSession); ok && last == target.SessionID {
		if err := co.Store.Delete(storage.KeyLastSession); err != nil {
			utils.Warn("failed to forget session", "session_id", target.SessionID, "error", err.Error())
		}
	}
	if target.SessionID == co.Conversation.GetSessionId() {
		co.Conversation.NewChat()
	}
	utils.PrintSuccess(co.out, co.t("sessionDeleted"))
}

// Profile

func (co *ChatbotOrchestrator) showProfile() {
	co.Speech.StopAll()
	profile, err := co.Profile.Fetch(co.ctx)
	if err != nil {
		co.printFailure("profileLoadError", err)
		return
	}

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(co.out, "\n👤 %s\n", co.t("profile"))

	orNotProvided := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return co.t("notProvided")
		}
		return v
	}
	skills := co.t("noSkillsAdded")
	if len(profile.Profile.Skills) > 0 {
		skills = strings.Join(profile.Profile.Skills, ", ")
	}
	summary := profile.Profile.CareerSummary
	if strings.TrimSpace(summary) == "" {
		summary = co.t("careerSummaryPlaceholder")
	}

	printField(co.out, co.t("name"), orNotProvided(profile.Name))
	printField(co.out, co.t("email"), orNotProvided(profile.Email))
	printField(co.out, co.t("district"), orNotProvided(profile.Profile.District))
	printField(co.out, co.t("education"), orNotProvided(profile.Profile.Education))
	printField(co.out, co.t("skills"), skills)
	printField(co.out, co.t("careerSummary"), summary)
}

func (co *ChatbotOrchestrator) editProfile() {
	co.Speech.StopAll()
	if _, ok := co.Profile.Profile(); !ok {
		if _, err := co.Profile.Fetch(co.ctx); err != nil {
			co.printFailure("profileLoadError", err)
			return
		}
	}
	form := co.Profile.Form()

	yellow := color.New(color.FgYellow, color.Bold)
	yellow.Fprintf(co.out, "\n✏️  %s\n", co.t("editProfile"))

	fields := []struct {
		label string
		value *string
	}{
		{co.t("name"), &form.Name},
		{co.t("district"), &form.District},
		{co.t("education"), &form.Education},
		{co.t("skills"), &form.Skills},
		{co.t("careerSummary"), &form.CareerSummary},
	}
	for _, f := range fields {
		answer, ok := co.ask(fmt.Sprintf("%s [%s]", f.label, *f.value))
		if !ok {
			return
		}
		if answer != "" {
			*f.value = answer
		}
	}

	if _, err := co.Profile.Save(co.ctx, form); err != nil {
		co.printFailure("profileUpdateError", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("profileUpdated"))
}

func (co *ChatbotOrchestrator) changePassword() {
	current, ok := co.ask(co.t("currentPassword"))
	if !ok {
		return
	}
	password, ok := co.ask(co.t("newPassword"))
	if !ok {
		return
	}
	confirm, ok := co.ask(co.t("confirmPassword"))
	if !ok {
		return
	}

	if err := co.Profile.ChangePassword(co.ctx, current, password, confirm); err != nil {
		co.printFailure("passwordChangeError", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("passwordChanged"))
}

func (co *ChatbotOrchestrator) deleteAccount() {
	if !co.confirm(co.t("deleteAccountConfirm")) {
		return
	}
	if err := co.Profile.DeleteAccount(co.ctx); err != nil {
		co.printFailure("deleteAccountError", err)
		return
	}
	utils.PrintSuccess(co.out, co.t("accountDeleted"))
}

// Language and speech

func (co *ChatbotOrchestrator) setLanguage(args []string) {
	if len(args) == 0 {
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(co.out, "%s:\n", co.t("selectLanguage"))
		for _, lang := range models.Languages() {
			marker := " "
			if lang == co.I18n.Language() {
				marker = "*"
			}
			fmt.Fprintf(co.out, "%s %s  %s\n", marker, lang, lang.NativeLabel())
		}
		return
	}

	if err := co.I18n.SetLanguage(strings.ToLower(args[0])); err != nil {
		utils.PrintError(co.out, errs.UserMessage(err, err.Error()))
		return
	}
	utils.PrintSuccess(co.out, fmt.Sprintf("%s: %s", co.t("languageChanged"), co.I18n.Language().NativeLabel()))
}

// listen dictates one message. Each transcript update replaces the pending
// text; Enter stops listening and sends it. Typed text takes precedence.
func (co *ChatbotOrchestrator) listen() {
	if err := co.Speech.StartListening(); err != nil {
		co.printSpeechError("speechRecognitionUnsupported", "speechRecognitionError", err)
		return
	}
	utils.PrintInfo(co.out, co.t("listening"))

	typed, err := co.readLine()
	co.Speech.StopListening()
	if err != nil {
		return
	}

	text := typed
	if text == "" {
		text = co.Speech.Transcript()
	}
	if strings.TrimSpace(text) == "" {
		return
	}
	printUserMessage(co.out, text)
	co.sendMessage(text)
}

func (co *ChatbotOrchestrator) speakLast() {
	msg, ok := co.Conversation.LastAssistantMessage()
	if !ok {
		utils.PrintInfo(co.out, co.t("noMessages"))
		return
	}
	if _, err := co.Speech.Speak(msg.Content); err != nil {
		co.printSpeechError("speechSynthesisUnsupported", "speechSynthesisError", err)
	}
}

func (co *ChatbotOrchestrator) setAutoSpeak(args []string) {
	if len(args) == 0 {
		args = []string{"on"}
		if co.Speech.AutoSpeak() {
			args[0] = "off"
		}
	}

	switch strings.ToLower(args[0]) {
	case "on":
		if !co.Speech.CanSpeak() {
			utils.PrintWarning(co.out, co.t("speechSynthesisUnsupported"))
			return
		}
		co.Speech.SetAutoSpeak(true)
		utils.PrintSuccess(co.out, co.t("autoSpeakOn"))
	case "off":
		co.Speech.SetAutoSpeak(false)
		utils.PrintSuccess(co.out, co.t("autoSpeakOff"))
	default:
		utils.PrintWarning(co.out, "/autospeak on|off")
	}
}

func (co *ChatbotOrchestrator) printSpeechError(unsupportedKey, failedKey string, err error) {
	if errs.Is(err, errs.KindCapability) {
		utils.PrintWarning(co.out, co.t(unsupportedKey))
		return
	}
	utils.PrintError(co.out, fmt.Sprintf("%s: %s", co.t(failedKey), errs.UserMessage(err, err.Error())))
}

// Extras

func (co *ChatbotOrchestrator) translateLast() {
	msg, ok := co.Conversation.LastAssistantMessage()
	if !ok {
		utils.PrintInfo(co.out, co.t("nothingToTranslate"))
		return
	}

	translated, err := services.NewTranslator("auto", co.I18n.Language().String()).Translate(msg.Content)
	if err != nil {
		utils.Error(err, "failed to translate reply")
		utils.PrintError(co.out, co.t("translationFailed"))
		return
	}
	printAssistantMessage(co.out, translated)
}

func (co *ChatbotOrchestrator) exportConversation() {
	messages := co.Conversation.Messages()
	if len(messages) == 0 {
		utils.PrintInfo(co.out, co.t("noMessages"))
		return
	}

	sessionID := co.Conversation.GetSessionId()
	name := sessionID
	if name == "" {
		name = co.now().Format("20060102_150405")
	}
	data := map[string]any{
		"session_id": sessionID,
		"language":   co.I18n.Language(),
		"messages":   messages,
	}

	path, err := utils.ExportToJSON(co.ExportDir, "conversation_"+name, data, "conversation_export", "/chat")
	if err != nil {
		utils.Error(err, "failed to export conversation")
		utils.PrintError(co.out, co.t("errorOccurred"))
		return
	}
	utils.PrintSuccess(co.out, fmt.Sprintf("%s: %s", co.t("exported"), path))
}

func (co *ChatbotOrchestrator) showStats() {
	stats := co.Conversation.GetConversationStats()

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)

	cyan.Fprintln(co.out, "\n📊 Conversation Statistics:")
	green.Fprintf(co.out, "• Total messages: %d\n", stats["total_messages"])
	green.Fprintf(co.out, "• Your messages: %d\n", stats["user_messages"])
	green.Fprintf(co.out, "• Replies: %d\n", stats["bot_messages"])
	green.Fprintf(co.out, "• Session ID: %s\n", co.Conversation.GetSessionId())
	green.Fprintf(co.out, "• State: %s\n", co.Conversation.State())
}

func (co *ChatbotOrchestrator) showLegacyHistory() {
	entries, err := co.Client.LegacyHistory(co.ctx)
	if err != nil {
		co.printFailure("errorOccurred", err)
		return
	}
	if len(entries) == 0 {
		utils.PrintInfo(co.out, co.t("noMessages"))
		return
	}

	now := co.now()
	white := color.New(color.FgWhite)
	for _, e := range entries {
		white.Fprintf(co.out, "[%s]\n", services.FormatRelativeTime(models.ParseTimestamp(e.Timestamp), now, co.I18n))
		printUserMessage(co.out, e.UserMessage)
		printAssistantMessage(co.out, e.AssistantResponse)
	}
}

func (co *ChatbotOrchestrator) endSession() {
	co.sessionActive = false
	co.Speech.StopAll()

	stats := co.Conversation.GetConversationStats()
	if stats["total_messages"] > 0 {
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(co.out, "📈 Messages exchanged: %d (you: %d, assistant: %d)\n",
			stats["total_messages"], stats["user_messages"], stats["bot_messages"])
		if id := co.Conversation.GetSessionId(); id != "" {
			cyan.Fprintf(co.out, "🔑 Session ID: %s\n", id)
		}
	}
	PrintGoodbye(co.out, co.t("goodbye"))
}
