package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	level := slog.LevelInfo
	if c.Writer.Status() >= 500 {
		level = slog.LevelError
	}
	l.Log(c.Request.Context(), level, "HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

func (l *Logger) LogHTTPError(c *gin.Context, err error) {
	l.ErrorContext(c.Request.Context(), "HTTP Error",
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", c.Writer.Status()),
		slog.Any("error", err),
	)
}

// LogDBQuery logs failures at error level and everything else at debug
func (l *Logger) LogDBQuery(ctx context.Context, query string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "Database Query Error",
			slog.String("query", query),
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)
		return
	}
	l.DebugContext(ctx, "Database Query", slog.String("query", query), slog.Duration("duration", duration))
}

func (l *Logger) LogSlowQuery(ctx context.Context, query string, duration time.Duration) {
	l.WarnContext(ctx, "Slow Database Query", slog.String("query", query), slog.Duration("duration", duration))
}

// LogExperienceStatusChanged records a moderation decision
func (l *Logger) LogExperienceStatusChanged(ctx context.Context, experienceID, from, to, actorID string) {
	l.InfoContext(ctx, "Experience Status Changed",
		slog.String("experience_id", experienceID),
		slog.String("from", from),
		slog.String("to", to),
		slog.String("actor_id", actorID),
	)
}

func (l *Logger) LogBookingCreated(ctx context.Context, bookingID, experienceID, userID string, slots int) {
	l.InfoContext(ctx, "Booking Created",
		slog.String("booking_id", bookingID),
		slog.String("experience_id", experienceID),
		slog.String("user_id", userID),
		slog.Int("slots", slots),
	)
}

func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, experienceID, userID string) {
	l.InfoContext(ctx, "Booking Cancelled",
		slog.String("booking_id", bookingID),
		slog.String("experience_id", experienceID),
		slog.String("user_id", userID),
	)
}

func (l *Logger) LogPaymentVerified(ctx context.Context, bookingID, orderID, paymentID string) {
	l.InfoContext(ctx, "Payment Verified",
		slog.String("booking_id", bookingID),
		slog.String("order_id", orderID),
		slog.String("payment_id", paymentID),
	)
}

func (l *Logger) LogPaymentFailed(ctx context.Context, bookingID, orderID, reason string) {
	l.WarnContext(ctx, "Payment Verification Failed",
		slog.String("booking_id", bookingID),
		slog.String("order_id", orderID),
		slog.String("reason", reason),
	)
}

// LogReviewCreated also carries the recomputed average
func (l *Logger) LogReviewCreated(ctx context.Context, experienceID, userID string, rating int, average float64) {
	l.InfoContext(ctx, "Review Created",
		slog.String("experience_id", experienceID),
		slog.String("user_id", userID),
		slog.Int("rating", rating),
		slog.Float64("average_rating", average),
	)
}

func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.InfoContext(ctx, "Authentication Success", slog.String("user_id", userID), slog.String("method", method))
}

func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.WarnContext(ctx, "Authentication Failure", slog.String("reason", reason), slog.String("ip", ip))
}

func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.WarnContext(ctx, "Rate Limit Exceeded", slog.String("ip", ip), slog.String("endpoint", endpoint))
}
