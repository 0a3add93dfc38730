package inbox

import "crmmail/config"

// Folder identifies one of the four mailbox views.
type Folder string

const (
	FolderInbox    Folder = "inbox"
	FolderSent     Folder = "sent"
	FolderArchived Folder = "archived"
	FolderTrash    Folder = "trash"
)

// SubfolderAll is the sent-folder subfolder showing every sending domain.
const SubfolderAll = "all"

// Navigator tracks the active folder and, within the sent folder, the
// active sending-domain subfolder. Subfolders only apply to sent mail;
// changing to any other folder resets the subfolder so a later return to
// sent starts from the combined view.
type Navigator struct {
	folder     Folder
	subfolder  string
	subfolders []config.SentSubfolder
}

// NewNavigator starts in the inbox with the combined sent view armed.
func NewNavigator(subfolders []config.SentSubfolder) *Navigator {
	return &Navigator{
		folder:     FolderInbox,
		subfolder:  SubfolderAll,
		subfolders: subfolders,
	}
}

// Folder returns the active folder.
func (n *Navigator) Folder() Folder { return n.folder }

// Subfolder returns the active sent subfolder id.
func (n *Navigator) Subfolder() string { return n.subfolder }

// Subfolders lists the configured sending-domain subfolders.
func (n *Navigator) Subfolders() []config.SentSubfolder { return n.subfolders }

// ChangeFolder switches the active folder. Leaving sent resets the
// subfolder to the combined view.
func (n *Navigator) ChangeFolder(folder Folder) {
	n.folder = folder
	if folder != FolderSent {
		n.subfolder = SubfolderAll
	}
}

// ChangeSubfolder selects a sent subfolder. Unknown ids fall back to the
// combined view.
func (n *Navigator) ChangeSubfolder(id string) {
	if id == SubfolderAll {
		n.subfolder = SubfolderAll
		return
	}
	for _, sf := range n.subfolders {
		if sf.ID == id {
			n.subfolder = id
			return
		}
	}
	n.subfolder = SubfolderAll
}

// ActiveDomain returns the sending domain that narrows the sent listing,
// empty when the combined view is active or the folder is not sent.
func (n *Navigator) ActiveDomain() string {
	if n.folder != FolderSent || n.subfolder == SubfolderAll {
		return ""
	}
	for _, sf := range n.subfolders {
		if sf.ID == n.subfolder {
			return sf.Domain
		}
	}
	return ""
}

// ValidFolder reports whether the name maps to a known folder.
func ValidFolder(name string) (Folder, bool) {
	switch Folder(name) {
	case FolderInbox, FolderSent, FolderArchived, FolderTrash:
		return Folder(name), true
	}
	return "", false
}
