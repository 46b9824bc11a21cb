// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the text of the client dialogue shared by the
// session layer and its tests.
//
// Prompt* constants end without a newline so the client types on the same
// line. Msg* constants are complete lines. Keeping them in one place keeps
// the wording consistent across the dialogue.
package app

const (
	// PromptUsername asks for the login name.
	PromptUsername = "Username: "

	// PromptPassword asks for the password of the user just named.
	PromptPassword = "Password: "

	// PromptCommand is shown whenever the session waits for a menu command.
	PromptCommand = "> "

	// PromptNewPassword asks for the replacement password.
	PromptNewPassword = "New password: "

	// PromptConfirmPassword asks to repeat the replacement password.
	PromptConfirmPassword = "Enter new password again: "
)

const (
	// MsgAuthenticationFailed is sent for every failed login. It does not
	// reveal whether the user exists.
	MsgAuthenticationFailed = "Authentication failed.\n"

	// MsgTooManyAttempts is sent right before the session is closed for
	// exceeding the login attempt limit.
	MsgTooManyAttempts = "Too many failed login attempts. Disconnecting.\n"

	// MsgLoggedIn greets an authenticated user. The verb is the username.
	MsgLoggedIn = "Logged in as %s.\n"

	// MsgHello answers the hello command. The verb is the username.
	MsgHello = "Hello, %s!\n"

	// MsgMenu lists the commands available after login.
	MsgMenu = "Available commands:\n" +
		"  hello   say hello\n" +
		"  passwd  change your password\n" +
		"  menu    show this menu\n" +
		"  exit    disconnect\n"

	// MsgUnknownCommand answers any input that is not a menu command.
	MsgUnknownCommand = "Unknown command. Type menu to list the commands.\n"

	// MsgEmptyPassword rejects an empty replacement password.
	MsgEmptyPassword = "Password must not be empty. Password unchanged.\n"

	// MsgPasswordMismatch is sent when the two replacement passwords differ.
	MsgPasswordMismatch = "Passwords do not match. Password unchanged.\n"

	// MsgPasswordChanged confirms a successful password change.
	MsgPasswordChanged = "Password changed.\n"

	// MsgInternalServerError is sent when a store operation fails for a
	// reason the client cannot resolve.
	MsgInternalServerError = "Internal server error. Try again later.\n"

	// MsgLineTooLong is sent before closing a session whose client sent an
	// over-long line.
	MsgLineTooLong = "Input line too long. Disconnecting.\n"

	// MsgGoodbye answers the exit command.
	MsgGoodbye = "Goodbye.\n"
)
