package app

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tvu/careboard/internal/api"
	"github.com/tvu/careboard/internal/board"
	"github.com/tvu/careboard/internal/keys"
	"github.com/tvu/careboard/internal/model"
	"github.com/tvu/careboard/internal/store"
	"github.com/tvu/careboard/internal/theme"
	"github.com/tvu/careboard/internal/ui"
	boardview "github.com/tvu/careboard/internal/ui/board"
	"github.com/tvu/careboard/internal/ui/command"
	"github.com/tvu/careboard/internal/ui/detail"
	helpview "github.com/tvu/careboard/internal/ui/help"
	loginview "github.com/tvu/careboard/internal/ui/login"
	"github.com/tvu/careboard/internal/ui/notices"
	"github.com/tvu/careboard/internal/ui/patientform"
	patientsview "github.com/tvu/careboard/internal/ui/patients"
	"github.com/tvu/careboard/internal/ui/taskform"
	"github.com/tvu/careboard/internal/watch"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewBoard
	ViewDetail
	ViewForm
	ViewNotices
	ViewPatients
	ViewPatientForm
	ViewHelp
	ViewCommand
	ViewConfirmDelete
	ViewConfirmPatientDelete
	ViewDelayPick
)

// delayChoices are the due-date postponement options offered by the
// delay prompt, in minutes.
var delayChoices = []int{15, 30, 60, 120}

// Deps bundles the wiring the root model needs.
type Deps struct {
	Store      *store.SQLiteStore
	Client     *api.Client
	Controller *board.Controller
	Watcher    *watch.Watcher

	// User is non-nil when a stored token was still valid at startup.
	User *model.User

	// RefreshInterval is how often the board re-fetches tasks from the
	// backend. Zero disables periodic refresh.
	RefreshInterval time.Duration
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and wiring between the backend, store, and watcher.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	store      *store.SQLiteStore
	client     *api.Client
	controller *board.Controller
	watcher    *watch.Watcher

	boardView       boardview.Model
	detailView      detail.Model
	formView        taskform.Model
	loginView       loginview.Model
	noticesView     notices.Model
	patientView     patientsview.Model
	patientFormView patientform.Model
	helpView        helpview.Model
	commandView     command.Model

	user             *model.User
	refreshInterval  time.Duration
	storeEvents      chan store.NotificationEvent
	pendingTaskID    int64
	pendingPatientID int64
	detailTaskID     int64
	unreadCount      int
	statusText       string
	ready            bool
}

// New creates the root application model.
func New(deps Deps) Model {
	k := keys.DefaultKeyMap()

	events := make(chan store.NotificationEvent, 16)
	deps.Store.SubscribeNotifications(func(e store.NotificationEvent) {
		select {
		case events <- e:
		default:
		}
	})

	view := ViewBoard
	if deps.User == nil {
		view = ViewLogin
	}

	return Model{
		currentView:     view,
		keys:            k,
		store:           deps.Store,
		client:          deps.Client,
		controller:      deps.Controller,
		watcher:         deps.Watcher,
		boardView:       boardview.New(k, 80, 24),
		detailView:      detail.New(k, 80, 24),
		formView:        taskform.New(80, 24),
		loginView:       loginview.New(80, 24),
		noticesView:     notices.New(k, 80, 24),
		patientView:     patientsview.New(k, 80, 24),
		patientFormView: patientform.New(80, 24),
		helpView:        helpview.New(k, 80, 24),
		commandView:     command.New(80, 24),
		user:            deps.User,
		refreshInterval: deps.RefreshInterval,
		storeEvents:     events,
	}
}

// Init starts the watcher and kicks off the first refresh, or shows the
// sign-in form when no valid session exists.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForStoreEvent()}

	if m.currentView == ViewLogin {
		cmds = append(cmds, m.loginView.Init())
		return tea.Batch(cmds...)
	}

	m.watcher.Start()
	cmds = append(cmds,
		m.refreshTasks(),
		m.loadUsers(),
		m.fetchUnreadCount(),
		m.scheduleRefresh(),
	)
	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.boardView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.formView.SetSize(contentWidth, contentHeight)
		m.loginView.SetSize(contentWidth, contentHeight)
		m.noticesView.SetSize(contentWidth, contentHeight)
		m.patientView.SetSize(contentWidth, contentHeight)
		m.patientFormView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case loginview.SubmitMsg:
		if msg.Signup {
			return m, m.doSignup(msg.Email, msg.Password, msg.Username)
		}
		return m, m.doLogin(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			m.loginView.SetError(loginFailureText(msg.err))
			cmd := m.loginView.Start()
			return m, cmd
		}
		m.user = msg.user
		m.currentView = ViewBoard
		m.watcher.Start()
		return m, tea.Batch(
			m.refreshTasks(),
			m.loadUsers(),
			m.fetchUnreadCount(),
			m.scheduleRefresh(),
		)

	case tasksRefreshedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.forceLogin()
			}
			m.statusText = "refresh failed: backend unreachable"
			return m, nil
		}
		m.statusText = ""
		cmd := m.boardView.SetTasks(m.controller.Tasks())
		return m, cmd

	case refreshTickMsg:
		if m.currentView == ViewLogin {
			return m, nil
		}
		return m, tea.Batch(m.refreshTasks(), m.scheduleRefresh())

	case storeEventMsg:
		cmds := []tea.Cmd{m.fetchUnreadCount(), m.waitForStoreEvent()}
		if m.currentView == ViewNotices {
			cmds = append(cmds, m.loadNotifications())
		}
		return m, tea.Batch(cmds...)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case notificationsLoadedMsg:
		cmd := m.noticesView.SetNotifications(msg.notifications)
		return m, cmd

	case usersLoadedMsg:
		m.formView.SetUsers(msg.users)
		return m, nil

	case patientsLoadedMsg:
		if msg.err != nil {
			m.statusText = "could not load patients"
			m.currentView = ViewBoard
			return m, nil
		}
		m.patientFormView.SetHospitals(msg.hospitals)
		cmd := m.patientView.SetPatients(msg.patients, msg.hospitals)
		return m, cmd

	case patientSavedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.forceLogin()
			}
			m.statusText = actionFailureText(msg.err)
			return m, nil
		}
		m.statusText = ""
		return m, m.loadPatients()

	case actionResultMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.forceLogin()
			}
			m.statusText = actionFailureText(msg.err)
			return m, nil
		}
		m.statusText = ""
		cmd := m.boardView.SetTasks(m.controller.Tasks())
		return m, cmd

	case boardview.SelectedTaskMsg:
		if task, ok := m.controller.Task(msg.TaskID); ok {
			m.previousView = m.currentView
			m.currentView = ViewDetail
			m.detailTaskID = msg.TaskID
			m.detailView.SetTask(&task)
			// The local copy renders immediately; the fetch swaps in
			// the backend's current record when it lands.
			return m, m.loadTaskDetail(msg.TaskID)
		}
		return m, nil

	case taskDetailLoadedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m.forceLogin()
			}
			return m, nil
		}
		if m.currentView == ViewDetail && m.detailTaskID == msg.taskID {
			m.detailView.SetTask(msg.task)
		}
		return m, nil

	case taskform.SubmitMsg:
		m.currentView = ViewBoard
		return m, m.createTask(msg.Draft)

	case taskform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewBoard
		return m, nil

	case detail.ActionMsg:
		return m.handleDetailAction(msg)

	case notices.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case notices.MarkReadMsg:
		return m, m.markNotificationRead(msg.ID)

	case notices.MarkAllReadMsg:
		return m, m.markAllNotificationsRead()

	case patientsview.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case patientform.SubmitMsg:
		m.currentView = ViewPatients
		return m, m.registerPatient(msg.Patient)

	case patientform.CancelMsg:
		m.currentView = ViewPatients
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if handled, model, cmd := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work regardless of the focused
// view. Returns handled=false when the key should fall through.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	// Text-entry views own their keyboard except for ctrl+c.
	typing := m.currentView == ViewLogin ||
		m.currentView == ViewForm ||
		m.currentView == ViewPatientForm ||
		m.currentView == ViewCommand

	switch msg.String() {
	case "ctrl+c":
		m.watcher.Stop()
		return true, m, tea.Quit

	case "q":
		if m.currentView == ViewBoard {
			m.watcher.Stop()
			return true, m, tea.Quit
		}

	case "esc":
		if m.currentView == ViewHelp || m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}

	case "?":
		if typing {
			break
		}
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return true, m, nil

	case ":":
		if typing || m.currentView == ViewLogin {
			break
		}
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return true, m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return true, m, cmd

	case "r":
		if m.currentView == ViewBoard {
			return true, m, m.refreshTasks()
		}

	case "n":
		if m.currentView == ViewBoard {
			m.previousView = m.currentView
			m.currentView = ViewForm
			cmd := m.formView.Start()
			return true, m, cmd
		}
		if m.currentView == ViewPatients && !m.patientView.Filtering() {
			m.previousView = m.currentView
			m.currentView = ViewPatientForm
			cmd := m.patientFormView.Start()
			return true, m, cmd
		}

	case "v":
		if m.currentView == ViewBoard {
			m.previousView = m.currentView
			m.currentView = ViewNotices
			return true, m, m.loadNotifications()
		}

	case "p":
		if m.currentView == ViewBoard {
			m.previousView = m.currentView
			m.currentView = ViewPatients
			return true, m, m.loadPatients()
		}

	case "s":
		if m.currentView == ViewBoard {
			if task, ok := m.boardView.SelectedTask(); ok {
				return true, m, m.advanceTask(task.ID)
			}
		}

	case "x":
		if m.currentView == ViewBoard {
			if task, ok := m.boardView.SelectedTask(); ok {
				return true, m, m.cancelTask(task.ID)
			}
		}

	case "y":
		if m.currentView == ViewBoard {
			if task, ok := m.boardView.SelectedTask(); ok && task.DueDate != nil {
				m.previousView = m.currentView
				m.currentView = ViewDelayPick
				m.pendingTaskID = task.ID
				return true, m, nil
			}
		}

	case "d":
		if m.currentView == ViewBoard {
			if task, ok := m.boardView.SelectedTask(); ok {
				m.previousView = m.currentView
				m.currentView = ViewConfirmDelete
				m.pendingTaskID = task.ID
				return true, m, nil
			}
		}
		if m.currentView == ViewPatients && !m.patientView.Filtering() {
			if patient, ok := m.patientView.SelectedPatient(); ok {
				m.previousView = m.currentView
				m.currentView = ViewConfirmPatientDelete
				m.pendingPatientID = patient.ID
				return true, m, nil
			}
		}
	}

	switch m.currentView {
	case ViewConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ViewConfirmPatientDelete:
		return m.handleConfirmPatientDeleteKeys(msg)
	case ViewDelayPick:
		return m.handleDelayPickKeys(msg)
	}

	return false, m, nil
}

// handleConfirmDeleteKeys waits for a y/n answer to the delete prompt.
func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pendingTaskID
		m.pendingTaskID = 0
		m.currentView = m.previousView
		return true, m, m.deleteTask(id)
	case "n", "N", "esc":
		m.pendingTaskID = 0
		m.currentView = m.previousView
		return true, m, nil
	}
	return true, m, nil
}

// handleConfirmPatientDeleteKeys waits for a y/n answer to the patient
// removal prompt.
func (m Model) handleConfirmPatientDeleteKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		id := m.pendingPatientID
		m.pendingPatientID = 0
		m.currentView = m.previousView
		return true, m, m.removePatient(id)
	case "n", "N", "esc":
		m.pendingPatientID = 0
		m.currentView = m.previousView
		return true, m, nil
	}
	return true, m, nil
}

// handleDelayPickKeys waits for a postponement choice.
func (m Model) handleDelayPickKeys(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch msg.String() {
	case "1", "2", "3", "4":
		idx := int(msg.String()[0] - '1')
		id := m.pendingTaskID
		m.pendingTaskID = 0
		m.currentView = m.previousView
		return true, m, m.delayTask(id, delayChoices[idx])
	case "esc":
		m.pendingTaskID = 0
		m.currentView = m.previousView
		return true, m, nil
	}
	return true, m, nil
}

// handleDetailAction maps detail view actions onto controller calls.
func (m Model) handleDetailAction(msg detail.ActionMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case "advance":
		m.currentView = ViewBoard
		return m, m.advanceTask(msg.TaskID)
	case "cancel":
		m.currentView = ViewBoard
		return m, m.cancelTask(msg.TaskID)
	case "delay":
		m.previousView = ViewBoard
		m.currentView = ViewDelayPick
		m.pendingTaskID = msg.TaskID
		return m, nil
	case "delete":
		m.previousView = ViewBoard
		m.currentView = ViewConfirmDelete
		m.pendingTaskID = msg.TaskID
		return m, nil
	}
	return m, nil
}

// forceLogin drops back to the sign-in form after an auth failure. The
// client's token is cleared so the dead session's bearer token never
// rides on later requests.
func (m Model) forceLogin() (tea.Model, tea.Cmd) {
	m.watcher.Stop()
	m.client.SetToken("")
	m.user = nil
	m.currentView = ViewLogin
	m.loginView.SetError("session expired, please sign in again")
	cmd := m.loginView.Start()
	return m, cmd
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewForm:
		m.formView, cmd = m.formView.Update(msg)
	case ViewNotices:
		m.noticesView, cmd = m.noticesView.Update(msg)
	case ViewPatients:
		m.patientView, cmd = m.patientView.Update(msg)
	case ViewPatientForm:
		m.patientFormView, cmd = m.patientFormView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewConfirmDelete, ViewConfirmPatientDelete, ViewDelayPick:
		// Waiting on the prompt; nothing to delegate.
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "careboard"
	if m.user != nil {
		headerTitle = fmt.Sprintf("careboard — %s", m.user.Username)
	}
	header := m.layout.RenderHeader(headerTitle, m.headerStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewBoard:
		return m.boardView.View()
	case ViewDetail:
		return m.detailView.View()
	case ViewForm:
		return m.formView.View()
	case ViewNotices:
		return m.noticesView.View()
	case ViewPatients:
		return m.patientView.View()
	case ViewPatientForm:
		return m.patientFormView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewConfirmDelete:
		return m.renderPrompt("Delete this task? It cannot be restored.  y / n")
	case ViewConfirmPatientDelete:
		return m.renderPrompt("Remove this patient from the roster?  y / n")
	case ViewDelayPick:
		return m.renderPrompt("Delay by:  1) 15m   2) 30m   3) 1h   4) 2h   esc cancel")
	default:
		return ""
	}
}

// renderPrompt draws a small centered prompt over an otherwise empty
// content area.
func (m Model) renderPrompt(text string) string {
	panel := theme.BorderStyle.
		Padding(1, 2).
		Render(text)

	return lipgloss.NewStyle().
		Width(m.layout.ContentWidth()).
		Height(m.layout.ContentHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Render(panel)
}

// headerStatus returns the right-hand header text.
func (m Model) headerStatus() string {
	if m.currentView == ViewLogin {
		return "signed out"
	}
	if m.unreadCount > 0 {
		return fmt.Sprintf("%d unread", m.unreadCount)
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.statusText != "" && (m.currentView == ViewBoard || m.currentView == ViewPatients) {
		return m.statusText
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | ctrl+s sign up | ctrl+c quit"
	case ViewDetail:
		return "esc back | s advance | y delay | x cancel | d delete | j/k scroll"
	case ViewForm:
		return "enter next | esc cancel"
	case ViewNotices:
		return "enter mark read | a mark all read | esc back"
	case ViewPatients:
		return "/ filter | n register | d remove | esc back"
	case ViewPatientForm:
		return "enter next | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return ": close command | enter execute | esc back"
	case ViewConfirmDelete, ViewConfirmPatientDelete:
		return "y confirm | n cancel"
	case ViewDelayPick:
		return "1-4 choose | esc cancel"
	default:
		return "q quit | ? help | n new | s advance | y delay | d delete | v notifications | p patients | r refresh"
	}
}

// loginFailureText maps a sign-in error to a short user-facing message.
func loginFailureText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if api.IsAuthError(err) {
		return "invalid email or password"
	}
	return "sign-in failed: backend unreachable"
}

// actionFailureText maps a board action error to a short user-facing
// message.
func actionFailureText(err error) string {
	var invalid *model.InvalidTransitionError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	var validation *board.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "action failed: backend unreachable"
}
