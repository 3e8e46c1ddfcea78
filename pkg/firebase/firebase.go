package firebase

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and the service handles the
// synchronization stores share. It is constructed once at startup and
// passed by reference; nothing reinitializes it afterwards.
type App struct {
	FirebaseApp *firebase.App
	Firestore   *firestore.Client
	Bucket      *storage.BucketHandle
	BucketName  string
}

// InitFirebase initializes the Firebase application along with the Firestore
// client and the default Storage bucket. Credentials are taken from the given
// file path, or from FIREBASE_CREDENTIALS_BASE64 when set.
func InitFirebase(ctx context.Context, credentialsPath, projectID, storageBucket string) (*App, error) {
	var opt option.ClientOption
	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			return nil, fmt.Errorf("error decoding base64 credentials: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
	} else {
		if credentialsPath == "" {
			return nil, fmt.Errorf("Firebase credentials path not provided")
		}
		if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
		}
		opt = option.WithCredentialsFile(credentialsPath)
	}

	conf := &firebase.Config{
		ProjectID:     projectID,
		StorageBucket: storageBucket,
	}

	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	firestoreClient, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	app := &App{
		FirebaseApp: firebaseApp,
		Firestore:   firestoreClient,
		BucketName:  storageBucket,
	}

	if storageBucket != "" {
		storageClient, err := firebaseApp.Storage(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting storage client: %w", err)
		}
		bucket, err := storageClient.Bucket(storageBucket)
		if err != nil {
			return nil, fmt.Errorf("error getting storage bucket %s: %w", storageBucket, err)
		}
		app.Bucket = bucket
		log.Printf("Storage initialized with bucket: %s", storageBucket)
	} else {
		log.Println("No storage bucket configured. Media uploads unavailable.")
	}

	log.Println("Firebase app and Firestore client initialized successfully!")
	return app, nil
}

// Close releases the Firestore connection.
func (a *App) Close() {
	if a.Firestore != nil {
		if err := a.Firestore.Close(); err != nil {
			log.Printf("Error closing Firestore client: %v", err)
		}
	}
}
