package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tvu/careboard/internal/board"
	"github.com/tvu/careboard/internal/credential"
	"github.com/tvu/careboard/internal/model"
)

// loginResultMsg carries the outcome of a sign-in attempt.
type loginResultMsg struct {
	user *model.User
	err  error
}

// tasksRefreshedMsg is sent after the controller re-fetched the board.
type tasksRefreshedMsg struct {
	err error
}

// refreshTickMsg triggers a periodic board refresh.
type refreshTickMsg struct{}

// storeEventMsg is sent whenever the notification store changes.
type storeEventMsg struct{}

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// notificationsLoadedMsg carries the notification log for the panel.
type notificationsLoadedMsg struct {
	notifications []model.Notification
}

// usersLoadedMsg carries assignable users for the task form.
type usersLoadedMsg struct {
	users []model.User
}

// patientsLoadedMsg carries the patient roster and hospital lookup.
type patientsLoadedMsg struct {
	patients  []model.Patient
	hospitals []model.Hospital
	err       error
}

// patientSavedMsg is sent after a patient mutation completes.
type patientSavedMsg struct {
	err error
}

// taskDetailLoadedMsg carries a freshly fetched task for the detail
// view. task is nil when the fetch failed.
type taskDetailLoadedMsg struct {
	taskID int64
	task   *model.Task
	err    error
}

// actionResultMsg is sent after a board mutation completes.
type actionResultMsg struct {
	err error
}

// doLogin signs in against the backend and persists the token in the
// system keyring on success.
func (m Model) doLogin(email, password string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.Login(context.Background(), email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}
		// Keyring failures are not fatal; the session still works,
		// the user just has to sign in again next time.
		_ = credential.Set(credential.TokenKey, resp.Token)
		user := resp.User
		return loginResultMsg{user: &user}
	}
}

// doSignup creates an account against the backend and persists the
// token in the system keyring on success.
func (m Model) doSignup(email, password, username string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		resp, err := client.Signup(context.Background(), email, password, username)
		if err != nil {
			return loginResultMsg{err: err}
		}
		_ = credential.Set(credential.TokenKey, resp.Token)
		user := resp.User
		return loginResultMsg{user: &user}
	}
}

// refreshTasks re-fetches the board from the backend.
func (m Model) refreshTasks() tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return tasksRefreshedMsg{err: c.Refresh(context.Background())}
	}
}

// scheduleRefresh arms the next periodic refresh tick.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.refreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// waitForStoreEvent blocks until the notification store changes.
func (m Model) waitForStoreEvent() tea.Cmd {
	events := m.storeEvents
	return func() tea.Msg {
		<-events
		return storeEventMsg{}
	}
}

// fetchUnreadCount queries the store for the unread notification count.
func (m Model) fetchUnreadCount() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		count, err := s.UnreadNotificationCount(context.Background())
		if err != nil {
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: count}
	}
}

// loadNotifications loads the notification log, most recent first.
func (m Model) loadNotifications() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		notifications, err := s.Notifications(context.Background())
		if err != nil {
			return notificationsLoadedMsg{}
		}
		return notificationsLoadedMsg{notifications: notifications}
	}
}

// markNotificationRead marks one notification as read.
func (m Model) markNotificationRead(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_ = s.MarkNotificationRead(context.Background(), id)
		return m.reloadNotices()
	}
}

// markAllNotificationsRead marks the whole log as read.
func (m Model) markAllNotificationsRead() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		_ = s.MarkAllNotificationsRead(context.Background())
		return m.reloadNotices()
	}
}

// reloadNotices rebuilds the notification panel message after a
// mark-read mutation.
func (m Model) reloadNotices() tea.Msg {
	notifications, err := m.store.Notifications(context.Background())
	if err != nil {
		return notificationsLoadedMsg{}
	}
	return notificationsLoadedMsg{notifications: notifications}
}

// loadUsers fetches assignable users for the task form.
func (m Model) loadUsers() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		users, err := client.ListUsers(context.Background())
		if err != nil {
			return usersLoadedMsg{}
		}
		return usersLoadedMsg{users: users}
	}
}

// loadPatients fetches the patient roster and hospital lookup.
func (m Model) loadPatients() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx := context.Background()
		patients, err := client.ListPatients(ctx)
		if err != nil {
			return patientsLoadedMsg{err: err}
		}
		hospitals, err := client.ListHospitals(ctx)
		if err != nil {
			return patientsLoadedMsg{err: err}
		}
		return patientsLoadedMsg{patients: patients, hospitals: hospitals}
	}
}

// registerPatient posts a new patient record.
func (m Model) registerPatient(p model.Patient) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		_, err := client.CreatePatient(context.Background(), p)
		return patientSavedMsg{err: err}
	}
}

// removePatient deletes a patient record. The confirmation already
// happened in the UI.
func (m Model) removePatient(patientID int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return patientSavedMsg{err: client.DeletePatient(context.Background(), patientID)}
	}
}

// loadTaskDetail re-fetches one task so the detail view shows the
// backend's current record rather than the board's last snapshot.
func (m Model) loadTaskDetail(taskID int64) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		task, err := client.GetTask(context.Background(), taskID)
		if err != nil {
			return taskDetailLoadedMsg{taskID: taskID, err: err}
		}
		return taskDetailLoadedMsg{taskID: taskID, task: task}
	}
}

// createTask posts a new task draft through the controller.
func (m Model) createTask(draft board.Draft) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return actionResultMsg{err: c.Create(context.Background(), draft)}
	}
}

// advanceTask moves a task to its next status.
func (m Model) advanceTask(taskID int64) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return actionResultMsg{err: c.Advance(context.Background(), taskID)}
	}
}

// cancelTask cancels a task.
func (m Model) cancelTask(taskID int64) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return actionResultMsg{err: c.Cancel(context.Background(), taskID)}
	}
}

// delayTask pushes a task's due date out by the given number of minutes.
func (m Model) delayTask(taskID int64, minutes int) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		return actionResultMsg{err: c.Delay(context.Background(), taskID, minutes)}
	}
}

// deleteTask removes a task. The confirmation already happened in the
// UI, so the controller callback just approves.
func (m Model) deleteTask(taskID int64) tea.Cmd {
	c := m.controller
	return func() tea.Msg {
		err := c.Delete(context.Background(), taskID, func() bool { return true })
		return actionResultMsg{err: err}
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case "refresh", "sync":
		return m.refreshTasks()
	case "quit", "q":
		m.watcher.Stop()
		return tea.Quit
	case "new task", "new":
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.formView.Start()
	case "notifications":
		m.previousView = m.currentView
		m.currentView = ViewNotices
		return m.loadNotifications()
	case "patients":
		m.previousView = m.currentView
		m.currentView = ViewPatients
		return m.loadPatients()
	case "sign out", "logout":
		_ = credential.Delete(credential.TokenKey)
		m.client.SetToken("")
		m.watcher.Stop()
		m.user = nil
		m.currentView = ViewLogin
		return m.loginView.Start()
	default:
		return nil
	}
}
